package cli

import "logup/internal/global"

func DefineOptions() (cmdOpts *global.CommandSet) {
	// Root level
	root := &global.CommandSet{
		Description:     "Log Uploader (logup)",
		FullDescription: "  Forwards a log stream from standard input to the terminal and remote log services",
		CommandName:     RootCLICommand,
		ChildCommands:   make(map[string]*global.CommandSet),
	}

	// Forwarding
	root.ChildCommands["forward"] = &global.CommandSet{
		CommandName:     "forward",
		Description:     "Forward Logs",
		FullDescription: "Reads standard input, splits it into line records, echoes them and uploads them to configured destinations",
		ChildCommands:   nil,
	}

	// Version Info
	root.ChildCommands["version"] = &global.CommandSet{
		CommandName:     "version",
		Description:     "Show Version Information",
		FullDescription: "Display meta information about program",
	}

	cmdOpts = root
	return
}
