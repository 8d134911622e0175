package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"modpanel_backend/internal/config"
)

// HashIP хеширует IP-адрес с секретной солью.
// В БД попадает только хеш; сырой IP нигде не сохраняется.
func HashIP(ip string) string {
	cfg := config.GetConfig()
	sum := sha256.Sum256([]byte(ip + cfg.Security.IPSalt))
	return hex.EncodeToString(sum[:])
}
