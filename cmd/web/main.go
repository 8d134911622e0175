package main

import "modpanel_backend/internal/app"

func main() {
	app.Run()
}
