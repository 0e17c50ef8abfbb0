package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpublish <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  publish    Publish markdown files or zip archives")
	fmt.Fprintln(w, "  rewrite    Rewrite image references in a document")
	fmt.Fprintln(w, "  serve      Run the HTTP upload service")
	fmt.Fprintln(w, "  convert    Generate slides from a published document")
	fmt.Fprintln(w, "  doctor     Check configuration and storage")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdpublish help <command>' for details on a specific command.")
}

// printCommonUsage prints the flags shared by every command.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
}

// printStorageUsage prints the storage flags.
func printStorageUsage(w io.Writer) {
	fmt.Fprintln(w, "Storage:")
	fmt.Fprintln(w, "      --uploads-dir <dir>   Raw uploads and documents (default uploads)")
	fmt.Fprintln(w, "      --public-dir <dir>    Served tree (default public)")
	fmt.Fprintln(w, "      --route-prefix <s>    URL segment before the upload id (default uploads)")
	fmt.Fprintln(w)
}

// printPreviewUsage prints the preview flags.
func printPreviewUsage(w io.Writer) {
	fmt.Fprintln(w, "Preview:")
	fmt.Fprintln(w, "      --style <name>        Preview style: default, minimal")
	fmt.Fprintln(w, "      --style-dir <dir>     Directory holding styles/<name>.css")
	fmt.Fprintln(w, "      --no-preview          Skip the HTML preview")
	fmt.Fprintln(w)
}

// printGenerateUsage prints the generation flags.
func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, "Generation:")
	fmt.Fprintln(w, "      --provider <s>        Provider: gemini, anthropic")
	fmt.Fprintln(w, "      --model <s>           Model (empty = provider default)")
	fmt.Fprintln(w)
}

// printPublishUsage prints usage for the publish command.
func printPublishUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpublish publish <file>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Publish markdown files or zip archives. Assets are copied to the public")
	fmt.Fprintln(w, "tree and image references are rewritten to their public paths.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  file      .md, .markdown or .zip file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Publishing:")
	fmt.Fprintln(w, "      --escape <s>          References above the root: clamp, keep, skip")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --json                Print results as JSON")
	fmt.Fprintln(w)
	printStorageUsage(w)
	printPreviewUsage(w)
	printCommonUsage(w)
}

// printRewriteUsage prints usage for the rewrite command.
func printRewriteUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpublish rewrite [file] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rewrite relative image references without publishing. Reads stdin when")
	fmt.Fprintln(w, "file is omitted or \"-\".")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rewriting:")
	fmt.Fprintln(w, "  -b, --base <path>         Public base, e.g. /uploads/up-1/ (default /)")
	fmt.Fprintln(w, "  -d, --dir <path>          Document directory inside the published root")
	fmt.Fprintln(w, "      --escape <s>          References above the root: clamp, keep, skip")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default stdout)")
	fmt.Fprintln(w, "      --list                List image references instead")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpublish serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP upload service.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Endpoints:")
	fmt.Fprintln(w, "  POST /upload              Multipart field \"file\": .md, .markdown or .zip")
	fmt.Fprintln(w, "  POST /api/convert         Generate slides (optional md_path)")
	fmt.Fprintln(w, "  GET  /<prefix>/<id>/...   Published assets and preview")
	fmt.Fprintln(w, "  GET  /healthz             Liveness check")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default :5181, or :$PORT)")
	fmt.Fprintln(w, "      --cors-origin <url>   Allowed origin, repeatable (default any)")
	fmt.Fprintln(w, "      --max-upload-mb <n>   Request size limit in MiB (default 64)")
	fmt.Fprintln(w, "      --upload-rate <r>     Uploads per second per client (default unlimited)")
	fmt.Fprintln(w, "      --upload-burst <n>    Uploads allowed at once per client (default 1)")
	fmt.Fprintln(w, "      --escape <s>          References above the root: clamp, keep, skip")
	fmt.Fprintln(w, "      --log-json            Write logs as JSON")
	fmt.Fprintln(w)
	printStorageUsage(w)
	printPreviewUsage(w)
	printGenerateUsage(w)
	printCommonUsage(w)
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpublish convert [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate a slides file from a published document.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -i, --input <path>        Document (default: newest upload)")
	fmt.Fprintln(w, "  -o, --output <path>       Slides file (default slides.md)")
	fmt.Fprintln(w)
	printStorageUsage(w)
	printGenerateUsage(w)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpublish doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check configuration, storage and generation credentials.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                Print results as JSON")
	fmt.Fprintln(w, "      --show-config         Print the merged configuration as YAML and exit")
	fmt.Fprintln(w)
	printStorageUsage(w)
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "publish":
		printPublishUsage(env.Stdout)
	case "rewrite":
		printRewriteUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "convert":
		printConvertUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdpublish version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdpublish help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
