package internal

import (
	"fmt"
	"strings"
)

// Config is shared by the driver and the inspector binaries.
type Config struct {
	SqliteFilepath  string `env:"SQLITE_FILEPATH,default=data/uow.db"`
	BadgerFilepath  string `env:"BADGER_FILEPATH,default=data/journal"`
	BlugeFilepath   string `env:"BLUGE_FILEPATH,default=data/index"`
	LogLevel        string `env:"LOG_LEVEL,default=INFO"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`
	ModerationWords string `env:"MODERATION_WORDS"`
	Colours         bool   `env:"COLOURS,default=true"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

// Words splits a comma separated dictionary, dropping empty entries.
func Words(csv string) []string {
	var words []string
	for _, word := range strings.Split(csv, ",") {
		if word = strings.TrimSpace(word); word != "" {
			words = append(words, word)
		}
	}
	return words
}
