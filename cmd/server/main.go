package main

import "carechat-backend/internal/app"

func main() {
	app.Run()
}
