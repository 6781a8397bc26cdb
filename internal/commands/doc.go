// Package commands contains the cobra command tree of the imdm CLI.
//
// The root command loads Config from IMDM_* environment variables (and an
// optional dotenv file), builds the logger and tags every run with a random
// run id. Subcommands:
//
//   - validate: check sample files against a YAML schema
//   - inspect: report the detected format, shape and dtype of data files
//   - version: print the build version
package commands
