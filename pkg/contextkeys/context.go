package contextkeys

// Используем кастомный тип, чтобы избежать коллизий с другими пакетами
type contextKey string

// DBContextKey - ключ, по которому в context хранится *gorm.DB (пул или транзакция)
const DBContextKey = contextKey("db")
