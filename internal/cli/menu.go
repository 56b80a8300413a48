package cli

import (
	"flag"
	"fmt"
	"io"
	"logup/internal/global"
	"sort"
	"strings"
)

const (
	RootCLICommand  string = "root"
	helpMenuTrailer string = `
Configuration values can also come from the environment:
  AWS_LOG_GROUP_NAME, AWS_LOG_STREAM_NAME, NEW_RELIC_REGION,
  NEW_RELIC_API_KEY, GOOGLE_CLOUD_PROJECT
`
	menuIndent = "  "
)

// Full standardized help menu (wraps option printer as well).
// Written to the flag set output (stderr by default), stdout carries forwarded logs.
func PrintHelpMenu(fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	out := fs.Output()

	current := rootCmd
	if command != "" && command != RootCLICommand {
		child, ok := rootCmd.ChildCommands[command]
		if !ok {
			fmt.Fprintf(out, "Unknown command: %s\n", command)
			return
		}
		current = child
	}

	// Usage line never includes the root name
	usage := []string{global.ProgBaseName}
	if current != rootCmd {
		usage = append(usage, current.CommandName)
	}
	if len(current.ChildCommands) > 0 {
		usage = append(usage, "[subcommand]")
	}
	if current.UsageOption != "" {
		usage = append(usage, current.UsageOption)
	}
	fmt.Fprintf(out, "Usage: %s\n\n", strings.Join(usage, " "))

	if current == rootCmd {
		fmt.Fprintf(out, "%s\n%s\n\n", current.Description, current.FullDescription)
	} else if current.FullDescription != "" {
		fmt.Fprintf(out, "%sDescription:\n%s%s%s\n\n", menuIndent, menuIndent, menuIndent, current.FullDescription)
	}

	printSubcommands(out, current)
	printFlagOptions(out, fs)

	if current == rootCmd {
		fmt.Fprint(out, helpMenuTrailer)
	}
}

func printSubcommands(out io.Writer, current *global.CommandSet) {
	if len(current.ChildCommands) == 0 {
		return
	}

	names := make([]string, 0, len(current.ChildCommands))
	width := 0
	for name := range current.ChildCommands {
		names = append(names, name)
		width = max(width, len(name))
	}
	sort.Strings(names)

	fmt.Fprintf(out, "%sSubcommands:\n", menuIndent)
	for _, name := range names {
		fmt.Fprintf(out, "%s%s%-*s - %s\n", menuIndent, menuIndent, width+2, name, current.ChildCommands[name].Description)
	}
	fmt.Fprintln(out)
}

// One help line, covering every flag name registered with the same usage text
type flagOption struct {
	short      string
	long       []string
	usage      string
	defaultVal string
}

func (opt flagOption) names() (joined string) {
	var long []string
	for _, name := range opt.long {
		long = append(long, "--"+name)
	}

	prefix := "    " // width of "-x, " so long names line up
	if opt.short != "" {
		prefix = "-" + opt.short
		if len(long) > 0 {
			prefix += ", "
		}
	}
	joined = prefix + strings.Join(long, ", ")
	return
}

// Prints flags with short and long aliases merged into one line
func printFlagOptions(out io.Writer, fs *flag.FlagSet) {
	byUsage := make(map[string]*flagOption)
	var order []*flagOption

	fs.VisitAll(func(arg *flag.Flag) {
		opt, seen := byUsage[arg.Usage]
		if !seen {
			opt = &flagOption{usage: arg.Usage, defaultVal: arg.DefValue}
			byUsage[arg.Usage] = opt
			order = append(order, opt)
		}
		if len(arg.Name) == 1 {
			opt.short = arg.Name
		} else {
			opt.long = append(opt.long, arg.Name)
		}
	})

	sortKey := func(opt *flagOption) string {
		if opt.short != "" {
			return strings.ToLower(opt.short)
		}
		return strings.ToLower(opt.long[0])
	}
	sort.Slice(order, func(a, b int) bool { return sortKey(order[a]) < sortKey(order[b]) })

	width := 0
	for _, opt := range order {
		width = max(width, len(opt.names()))
	}

	fmt.Fprintf(out, "%sOptions:\n", menuIndent)
	for _, opt := range order {
		desc := opt.usage
		switch opt.defaultVal {
		case "", "false", "0", "0s":
		default:
			desc += fmt.Sprintf(" [default: %s]", opt.defaultVal)
		}
		fmt.Fprintf(out, "%s%-*s  %s\n", menuIndent, width, opt.names(), desc)
	}
}
