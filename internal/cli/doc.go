// Package cli turns command-line arguments into an app.Config. It validates
// flag values and reports misuse as an ExitError carrying the process exit
// code; running the application is left to the entrypoint.
package cli
