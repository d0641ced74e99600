package main

import "github.com/frahmantamala/meal-scan/cmd"

func main() {
	cmd.Execute()
}
