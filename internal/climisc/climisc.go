// Package climisc holds the small CLI helper functions shared by the
// index and call subcommands: fatal error handling, required-flag
// checking, log-file setup, and directory/file existence checks.
// Trimmed down to what the
// genotyping CLI actually calls (ARG-database-specific helpers like
// CheckExt and Uint64SliceEqual have no caller in this domain).
package climisc

import (
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrorCheck logs a fatal error and exits, the one place this CLI calls
// os.Exit outside of main.
func ErrorCheck(msg error) {
	if msg != nil {
		log.Fatalf("terminated\n\nERROR --> %v\n\n", msg)
	}
}

// CheckRequiredFlags checks that every flag marked required on a command
// was actually set, the way cobra's own MarkFlagRequired only enforces
// per-flag rather than per-command.
func CheckRequiredFlags(flags *pflag.FlagSet) error {
	requiredError := false
	flagName := ""
	flags.VisitAll(func(flag *pflag.Flag) {
		requiredAnnotation := flag.Annotations[cobra.BashCompOneRequiredFlag]
		if len(requiredAnnotation) == 0 {
			return
		}
		flagRequired := requiredAnnotation[0] == "true"
		if flagRequired && !flag.Changed {
			requiredError = true
			flagName = flag.Name
		}
	})
	if requiredError {
		return errors.New("required flag `" + flagName + "` has not been set")
	}
	return nil
}

// StartLogging opens logFile for appending, creating its parent directory
// if needed, and returns the handle for the caller to redirect log output
// to and eventually close.
func StartLogging(logFile string) *os.File {
	logPath := strings.Split(logFile, "/")
	joinedLogPath := strings.Join(logPath[:len(logPath)-1], "/")
	if len(logPath) > 1 {
		if _, err := os.Stat(joinedLogPath); os.IsNotExist(err) {
			if err := os.MkdirAll(joinedLogPath, 0700); err != nil {
				log.Fatal("can't create specified directory for log")
			}
		}
	}
	logFH, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		log.Fatal(err)
	}
	return logFH
}

// CheckDir checks that a directory exists.
func CheckDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("no directory specified")
	}
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %v", dir)
		}
		return fmt.Errorf("can't access directory (check permissions): %v", dir)
	}
	return nil
}

// CheckFile checks that a file can be read.
func CheckFile(file string) error {
	if _, err := os.Stat(file); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %v", file)
		}
		return fmt.Errorf("can't access file (check permissions): %v", file)
	}
	return nil
}

// SetProcessors clamps the requested processor count to [1, NumCPU] and
// applies it via runtime.GOMAXPROCS, the check every subcommand's
// paramCheck repeats before starting its pipeline.
func SetProcessors(requested int) int {
	if requested <= 0 || requested > runtime.NumCPU() {
		requested = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(requested)
	return requested
}
