// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the evaluation lifecycle: load the
// manifest, resolve its inputs, evaluate the flake and print the selected
// result. It is decoupled from any specific entrypoint like a CLI.
package app
