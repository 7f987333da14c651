package main

import "github.com/ponyo877/livechat/cli/cmd"

func main() {
	cmd.Execute()
}
