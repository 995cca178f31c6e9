package rankstore

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// aofLog records every score mutation as an absolute "set id score" line so
// a replay rebuilds the exact final state regardless of how many deltas
// produced it.
type aofLog struct {
	file *os.File
}

func openAOF(path string) (*aofLog, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &aofLog{file: file}, nil
}

func (l *aofLog) logSet(id string, score float64) error {
	_, err := fmt.Fprintf(l.file, "set %s %s\n", id, strconv.FormatFloat(score, 'g', -1, 64))
	return err
}

// replay feeds every recorded line to apply. Malformed lines are skipped;
// a torn final write must not poison the whole store.
func replayAOF(path string, apply func(id string, score float64)) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		parts := strings.Split(strings.TrimSpace(line), " ")
		if len(parts) != 3 || parts[0] != "set" {
			continue
		}
		score, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			continue
		}
		apply(parts[1], score)
	}
	return nil
}

func (l *aofLog) Close() error {
	return l.file.Close()
}
