// Package cmd contains the supporting code for the crossval command. It reads evaluation configurations from
// .toml or .properties files and turns the names used in them into models, criteria and engine options.
package cmd
