package console

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const historyFileName = ".uc_history"

// LineReader reads console lines with line editing on a terminal and plain
// buffered reads otherwise.
type LineReader struct {
	rl      *readline.Instance
	scanner *bufio.Scanner
}

// NewLineReader picks readline when stdin is a terminal.
func NewLineReader() *LineReader {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return NewScannerReader(os.Stdin)
	}

	history := ""
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, historyFileName)
	}
	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            history,
		HistoryLimit:           500,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		log.Warnf("readline init failed, using basic input: %v", err)
		return NewScannerReader(os.Stdin)
	}
	return &LineReader{rl: rl}
}

func NewScannerReader(r io.Reader) *LineReader {
	return &LineReader{scanner: bufio.NewScanner(r)}
}

// ReadLine returns io.EOF at end of input or on interrupt.
func (lr *LineReader) ReadLine(prompt string) (string, error) {
	if lr.rl == nil {
		if !lr.scanner.Scan() {
			if err := lr.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return lr.scanner.Text(), nil
	}

	lr.rl.SetPrompt(prompt)
	line, err := lr.rl.Readline()
	if err != nil {
		if err == readline.ErrInterrupt {
			return "", io.EOF
		}
		return "", err
	}
	if trimmed := strings.TrimSpace(line); trimmed != "" {
		lr.rl.SaveToHistory(trimmed)
	}
	return line, nil
}

func (lr *LineReader) Close() error {
	if lr.rl != nil {
		return lr.rl.Close()
	}
	return nil
}
