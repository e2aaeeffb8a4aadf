package main

import (
	"testforge/internal/bootstrap"
)

func main() {
	bootstrap.NewApp().Run()
}
