package main

import "github.com/quocvuong92/gemini-chat/cmd"

func main() {
	cmd.Execute()
}
