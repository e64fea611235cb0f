// Package cli provides the interactive pdflearn terminal client.
//
// It wires configuration, the local session store, the API modules and a
// REPL in which every page of the learning platform is a command. Each
// command is guarded: protected pages require a session, public pages
// (login, register) are only shown to anonymous users.
//
// NewApp assembles the dependencies with fx; App.Run blocks until the user
// exits, App.Exec runs a single command for the non-interactive subcommands.
package cli
