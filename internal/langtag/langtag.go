// Package langtag normalizes raw fastText-style labels into BCP-47 tags
// and holds the closed registry of recognized output labels.
package langtag

import (
	"strings"

	"golang.org/x/text/language"
)

// labelPrefix is the fixed fastText label prefix, e.g. "__label__eng".
const labelPrefix = "__label__"

// replace maps ISO 639-3 (or 639-3+script) codes to their 639-1
// equivalent where one exists, plus a few known corrections
// (als -> gsw, eml -> x-eml).
var replace = map[string]string{
	"abk": "ab", "ace_Arab": "ace-Arab", "ace_Latn": "ace-Latn", "afr": "af",
	"aka": "ak", "als": "gsw", "amh": "am", "ara_Arab": "ar-Arab",
	"ara_Latn": "ar-Latn", "asm": "as", "bak": "ba", "bam": "bm", "bel": "be",
	"ben": "bn", "bis": "bi", "bjn_Arab": "bjn-Arab", "bjn_Latn": "bjn-Latn",
	"bod": "bo", "bos": "bs", "bul": "bg", "cat": "ca", "ces": "cs",
	"che": "ce", "chv": "cv", "crh_Latn": "crh-Latn", "cym": "cy", "dan": "da",
	"deu": "de", "dzo": "dz", "ell": "el", "eml": "x-eml", "eng": "en",
	"epo": "eo", "est": "et", "eus": "eu", "ewe": "ee", "fao": "fo",
	"fas": "fa", "fij": "fj", "fin": "fi", "fra": "fr", "gla": "gd",
	"gle": "ga", "glg": "gl", "grn": "gn", "guj": "gu", "hat": "ht",
	"hau": "ha", "heb": "he", "hin": "hi", "hrv": "hr", "hun": "hu",
	"hye": "hy", "ibo": "ig", "ind": "id", "isl": "is", "ita": "it",
	"jav": "jv", "jpn": "ja", "kal": "kl", "kan": "kn", "kas_Arab": "ks-Arab",
	"kas_Deva": "ks-Deva", "kat": "ka", "kau_Arab": "kr-Arab",
	"kau_Latn": "kr-Latn", "kaz": "kk", "khm": "km", "kik": "ki", "kin": "rw",
	"kir": "ky", "kon": "kg", "kor": "ko", "kur": "ku", "lao": "lo",
	"lav": "lv", "lim": "li", "lin": "ln", "lit": "lt", "ltz": "lb",
	"lug": "lg", "mal": "ml", "mar": "mr", "min_Latn": "min-Latn", "mkd": "mk",
	"mlg": "mg", "mlt": "mt", "mni_Mtei": "mni-Mtei", "mon": "mn",
	"mri": "mi", "msa": "ms", "mya": "my", "nav": "nv", "nld": "nl",
	"nno": "nn", "nob": "nb", "nya": "ny", "oci": "oc", "orm": "om",
	"oss": "os", "pan": "pa", "pol": "pl", "por": "pt", "prs": "fa-AF",
	"pus": "ps", "que": "qu", "roh": "rm", "ron": "ro", "run": "rn",
	"rus": "ru", "sag": "sg", "san": "sa", "sin": "si", "slk": "sk",
	"slv": "sl", "smo": "sm", "sna": "sn", "snd": "sd", "som": "so",
	"sot": "st", "spa": "es", "sqi": "sq", "srd": "sc", "srp_Cyrl": "sr-Cyrl",
	"ssw": "ss", "sun": "su", "swe": "sv", "tah": "ty", "tam": "ta",
	"tat_Cyrl": "tt-Cyrl", "tel": "te", "tgk": "tg", "tgl": "fil", "tha": "th",
	"tir": "ti", "tmh_Latn": "tmh-Latn", "tmh_Tfng": "tmh-Tfng", "ton": "to",
	"tsn": "tn", "tso": "ts", "tuk": "tk", "tur": "tr", "twi": "tw",
	"uig": "ug", "ukr": "uk", "urd": "ur", "uzb": "uz", "vie": "vi",
	"wol": "wo", "xho": "xh", "yid": "yi", "yor": "yo", "zho_Hans": "zh-Hans",
	"zho_Hant": "zh-Hant", "zul": "zu",
}

// Registry is the closed set of recognized output labels.
var Registry = buildRegistry()

func buildRegistry() map[string]struct{} {
	tags := []string{
		"af", "als", "am", "an", "ar", "arz", "as", "ast", "av", "az", "azb",
		"ba", "bar", "bcl", "be", "bg", "bh", "bn", "bo", "bpy", "br", "bs",
		"bxr", "ca", "cbk", "ce", "ceb", "ckb", "co", "cs", "cv", "cy", "da",
		"de", "diq", "dsb", "dty", "dv", "el", "eml", "en", "eo", "es", "et",
		"eu", "fa", "fi", "fr", "frr", "fy", "ga", "gd", "gl", "gn", "gom",
		"gu", "gv", "he", "hi", "hif", "hr", "hsb", "ht", "hu", "hy", "ia",
		"id", "ie", "ilo", "io", "is", "it", "ja", "jbo", "jv", "ka", "kk",
		"km", "kn", "ko", "krc", "ku", "kv", "kw", "ky", "la", "lb", "lez",
		"li", "lmo", "lo", "lrc", "lt", "lv", "mai", "mg", "mhr", "min",
		"mk", "ml", "mn", "mr", "mrj", "ms", "mt", "mwl", "my", "myv", "mzn",
		"nah", "nap", "nds", "ne", "new", "nl", "nn", "no", "oc", "or", "os",
		"pa", "pam", "pfl", "pl", "pms", "pnb", "ps", "pt", "qu", "rm", "ro",
		"ru", "rue", "sa", "sah", "sc", "scn", "sco", "sd", "sh", "si", "sk",
		"sl", "so", "sq", "sr", "su", "sv", "sw", "ta", "te", "tg", "th",
		"tk", "tl", "tr", "tt", "tyv", "ug", "uk", "ur", "uz", "vec", "vep",
		"vi", "vls", "vo", "wa", "war", "wuu", "xal", "xmf", "yi", "yo",
		"yue", "zh", "gsw", "multi",
	}
	m := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		m[t] = struct{}{}
	}
	return m
}

// IsRegistered reports whether label is in the closed registry. A label
// carrying a script or region subtag (zh-Hans, sr-Cyrl) or a private-use
// prefix (x-eml) matches on its language subtag.
func IsRegistered(label string) bool {
	if _, ok := Registry[label]; ok {
		return true
	}
	if rest, ok := strings.CutPrefix(label, "x-"); ok {
		_, ok = Registry[rest]
		return ok
	}
	if i := strings.IndexByte(label, '-'); i > 0 {
		_, ok := Registry[label[:i]]
		return ok
	}
	return false
}

// Normalize strips the __label__ prefix, applies the 639-3 -> 639-1
// substitution table, replaces underscores with hyphens, then parses as
// BCP-47. Returns an error if the result does not parse.
func Normalize(raw string) (string, error) {
	s := strings.TrimPrefix(raw, labelPrefix)
	if v, ok := replace[s]; ok {
		s = v
	}
	s = strings.ReplaceAll(s, "_", "-")
	tag, err := language.Parse(s)
	if err != nil {
		return "", err
	}
	return tag.String(), nil
}
