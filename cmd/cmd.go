// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// newApp builds the root command. Running it without a subcommand creates pending playlists.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "spotlists",
		Usage:    "Create Spotify playlists from local track lists",
		Version:  "0.1.0",
		Flags:    globalFlags(),
		Action:   r.Run,
		Commands: r.register(),
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   defaultConfigPath,
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Show what would be created without calling Spotify or writing the log",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log debug output, including per-track progress",
		},
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, authCommand, listCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// runCommand is the explicit form of the root action.
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Create a playlist for every definition not yet in the log",
		Action: r.Run,
	}
}

// authCommand handles the Spotify OAuth flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authorize with Spotify and save the token to the config file",
		Action: r.Auth,
	}
}

// listCommand shows definitions and their status
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List playlist definitions and whether they were created",
		Action:  r.List,
	}
}

// configCommand manages the config file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write an example config file",
				Action: r.ConfigInit,
			},
		},
	}
}
