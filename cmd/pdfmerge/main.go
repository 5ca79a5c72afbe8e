package main

import "github.com/MeKo-Tech/pdfmerge/cmd/pdfmerge/cmd"

func main() {
	cmd.Execute()
}
