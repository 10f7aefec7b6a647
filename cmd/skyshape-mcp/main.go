package main

import (
	"fmt"
	"log"
	"os"

	"github.com/knowing-the-sky/skyshape-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("skyshape-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("skyshape-mcp - MCP server for mask geometry and lunar phase measurement")
			fmt.Println()
			fmt.Println("Usage: skyshape-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  SKYSHAPE_MCP_LOG_LEVEL=debug    Log every request and tool failure")
			fmt.Println()
			fmt.Println("The server speaks MCP over stdin/stdout.")
			return
		default:
			fmt.Fprintf(os.Stderr, "unknown argument %q, see --help\n", os.Args[1])
			os.Exit(2)
		}
	}

	// stdout carries the protocol
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	debug := os.Getenv("SKYSHAPE_MCP_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("skyshape-mcp %s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	srv := server.New(server.WithVersion(Version), server.WithDebug(debug))
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
