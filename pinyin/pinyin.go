// Package pinyin converts Chinese text to sequences of pinyin
// syllables.
//
// Runs of Han characters are looked up one character at a time in the
// go-pinyin dictionary, taking the first reading of each character.
// Common herb names whose reading differs from that of their
// characters (人参 is "ren shen", not "ren can") are built in, and
// further phrase overrides can be supplied.
// Text outside the Han script is passed through as one token per run,
// or dropped.
package pinyin

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	gopinyin "github.com/mozillazg/go-pinyin"
	"golang.org/x/text/unicode/norm"
)

// Style selects how each syllable is written.
type Style int

const (
	Normal      Style = gopinyin.Normal      // zhong
	Tone        Style = gopinyin.Tone        // zhōng
	Tone2       Style = gopinyin.Tone2       // zho1ng
	Tone3       Style = gopinyin.Tone3       // zhong1
	Initials    Style = gopinyin.Initials    // zh
	FirstLetter Style = gopinyin.FirstLetter // z
	Finals      Style = gopinyin.Finals      // ong
)

var styleNames = map[string]Style{
	"normal":       Normal,
	"tone":         Tone,
	"tone2":        Tone2,
	"tone3":        Tone3,
	"initials":     Initials,
	"first_letter": FirstLetter,
	"finals":       Finals,
}

// ParseStyle returns the style with the given name.
func ParseStyle(name string) (Style, error) {
	if s, ok := styleNames[strings.ToLower(name)]; ok {
		return s, nil
	}
	var names []string
	for n := range styleNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return 0, fmt.Errorf("unknown pinyin style %q, expected one of %s", name, strings.Join(names, ", "))
}

// NonHan says what happens to text that is not written in Han
// characters: digits, Latin letters, punctuation, spaces.
type NonHan int

const (
	// KeepNonHan passes each run of non-Han text through unchanged.
	KeepNonHan NonHan = iota

	// DropNonHan removes non-Han text.
	DropNonHan
)

// ParseNonHan converts "keep" or "drop".
func ParseNonHan(name string) (NonHan, error) {
	switch strings.ToLower(name) {
	case "keep", "":
		return KeepNonHan, nil
	case "drop":
		return DropNonHan, nil
	}
	return 0, fmt.Errorf("unknown non-Han policy %q, expected keep or drop", name)
}

// A Transliterator turns text into pinyin syllables.  It is safe for
// concurrent use once constructed.
type Transliterator struct {
	style  Style
	nonHan NonHan
	args   gopinyin.Args

	// Phrase overrides, keyed by NFC text.
	phrases   map[string][]string
	maxPhrase int
}

// New returns a Transliterator.  phrases maps words to the syllables
// to emit for them verbatim; it may be nil.  The built-in herb names
// of HerbPhrases are always loaded, and an entry of phrases replaces
// the built-in entry for the same word.
func New(style Style, nonHan NonHan, phrases map[string][]string) *Transliterator {

	args := gopinyin.NewArgs()
	args.Style = int(style)
	args.Heteronym = false
	args.Fallback = func(r rune, a gopinyin.Args) []string {
		return []string{string(r)}
	}

	tr := &Transliterator{
		style:   style,
		nonHan:  nonHan,
		args:    args,
		phrases: make(map[string][]string),
	}

	tr.addPhrases(HerbPhrases(style))
	tr.addPhrases(phrases)

	return tr
}

func (tr *Transliterator) addPhrases(phrases map[string][]string) {
	for k, v := range phrases {
		k = norm.NFC.String(k)
		if k == "" {
			continue
		}
		tr.phrases[k] = v
		if n := utf8.RuneCountInString(k); n > tr.maxPhrase {
			tr.maxPhrase = n
		}
	}
}

// Syllables returns the pinyin syllables of text, in order.  The
// result depends only on text: the same input always gives the same
// output.  Empty text gives an empty result.
func (tr *Transliterator) Syllables(text string) []string {

	runes := []rune(norm.NFC.String(text))
	out := []string{}

	for i := 0; i < len(runes); {
		if !unicode.Is(unicode.Han, runes[i]) {
			j := i
			for j < len(runes) && !unicode.Is(unicode.Han, runes[j]) {
				j++
			}
			if tr.nonHan == KeepNonHan {
				out = append(out, string(runes[i:j]))
			}
			i = j
			continue
		}

		if n, syl := tr.matchPhrase(runes[i:]); n > 0 {
			out = append(out, syl...)
			i += n
			continue
		}

		out = append(out, gopinyin.SinglePinyin(runes[i], tr.args)...)
		i++
	}

	return out
}

// matchPhrase finds the longest phrase override at the start of
// runes.
func (tr *Transliterator) matchPhrase(runes []rune) (int, []string) {

	n := tr.maxPhrase
	if n > len(runes) {
		n = len(runes)
	}
	for ; n > 0; n-- {
		if syl, ok := tr.phrases[string(runes[:n])]; ok {
			return n, syl
		}
	}

	return 0, nil
}

// Join returns the syllables of text joined by sep.
func (tr *Transliterator) Join(text, sep string) string {
	return strings.Join(tr.Syllables(text), sep)
}
