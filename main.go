package main

import "github.com/saadjs/checkin-cli/cmd/checkin"

func main() {
	checkin.Execute()
}
