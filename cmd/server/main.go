package main

import "craft-invoice/backend/internal/app"

func main() {
	app.Run()
}
