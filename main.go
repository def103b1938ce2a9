package main

import "github.com/tfbscan/tfbscan/cmd/tfbscan"

func main() { tfbscan.Execute() }
