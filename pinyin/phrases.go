package pinyin

import (
	"strings"

	gopinyin "github.com/mozillazg/go-pinyin"
)

// herbPhrases holds herb names whose characters are read differently
// from their first dictionary reading, written with tone marks as in
// the go-pinyin dictionary.
var herbPhrases = map[string]string{
	"人参":  "rén shēn",
	"党参":  "dǎng shēn",
	"丹参":  "dān shēn",
	"玄参":  "xuán shēn",
	"苦参":  "kǔ shēn",
	"沙参":  "shā shēn",
	"太子参": "tài zǐ shēn",
	"西洋参": "xī yáng shēn",
	"白术":  "bái zhú",
	"苍术":  "cāng zhú",
	"厚朴":  "hòu pò",
	"蛤蚧":  "gé jiè",
	"茜草":  "qiàn cǎo",
	"藁本":  "gǎo běn",
	"大黄":  "dà huáng",
	"川芎":  "chuān xiōng",
	"薄荷":  "bò hé",
	"射干":  "shè gān",
	"桔梗":  "jié gěng",
	"没药":  "mò yào",
	"阿胶":  "ē jiāo",
	"藏红花": "zàng hóng huā",
	"重楼":  "chóng lóu",
	"菟丝子": "tù sī zǐ",
}

// HerbPhrases returns the built-in herb name readings written in
// style.  New loads them before any caller supplied phrases.
func HerbPhrases(style Style) map[string][]string {

	marked := gopinyin.NewArgs()
	marked.Style = gopinyin.Tone
	marked.Heteronym = true

	styled := gopinyin.NewArgs()
	styled.Style = int(style)
	styled.Heteronym = true

	out := make(map[string][]string, len(herbPhrases))
	for word, reading := range herbPhrases {
		syl := strings.Fields(reading)
		runes := []rune(word)
		if len(syl) != len(runes) {
			panic("pinyin: bad herb phrase " + word)
		}
		for i, r := range runes {
			syl[i] = restyle(r, syl[i], marked, styled)
		}
		out[word] = syl
	}

	return out
}

// restyle writes the reading want of r, given with tone marks, in the
// style of styled.  Both argument sets list every reading of r in
// dictionary order.
func restyle(r rune, want string, marked, styled gopinyin.Args) string {

	all := gopinyin.SinglePinyin(r, styled)
	for i, m := range gopinyin.SinglePinyin(r, marked) {
		if m == want && i < len(all) {
			return all[i]
		}
	}
	if len(all) > 0 {
		return all[0]
	}

	return want
}
