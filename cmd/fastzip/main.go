package main

import (
	"log"

	"github.com/nguyengg/fastzip/internal/cmd"
)

func main() {
	p, err := cmd.NewParser()
	if err != nil {
		log.Fatal(err)
	}

	_, err = p.Parse()
	exit(err)
}
