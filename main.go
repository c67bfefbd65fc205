package main

import "officebot/internal/app"

func main() {
	app.Main()
}
