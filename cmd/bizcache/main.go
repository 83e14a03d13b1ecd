// main is the entry point for the bizcache CLI.
package main

import (
	"os"

	"github.com/huangsam/bizcache/cmd"
	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/internal/iocache"
)

func main() {
	err := cmd.Execute()
	iocache.CloseStores()
	if err != nil {
		contract.LogWarn("bizcache failed", err)
		os.Exit(1)
	}
}
