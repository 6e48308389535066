package main

import "moihub_chatbot/client/chat-cli/cmd"

func main() {
	cmd.Execute()
}
