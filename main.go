package main

import (
	"github.com/yusufsyaifudin/ngirim/cmd"
)

func main() {
	cmd.Execute()
}
