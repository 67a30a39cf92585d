package main

import "slawatch/internal/app"

func main() {
	app.Main()
}
