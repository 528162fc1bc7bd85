package nameresolver

// ScriptConverter produces alternate-script spellings of a name so that
// NameResolver can match free text typed in one script against station
// and line names stored in another (§4.4 step 2). A converter that
// cannot perform a given direction should report ok=false rather than
// guessing; NameResolver tolerates an absent kanji converter.
type ScriptConverter interface {
	ToSimplified(s string) (string, bool)
	ToTraditional(s string) (string, bool)
	ToKanji(s string) (string, bool)
}

// tableConverter is a minimal, illustrative simplified<->traditional
// mapping. No general CJK script-conversion library appears in the
// retrieved example corpus (see DESIGN.md), so this is a small
// hand-maintained table rather than a full conversion dictionary; the
// kanji direction always reports ok=false, matching spec's allowance
// that the traditional<->kanji converter may be absent.
type tableConverter struct {
	simpToTrad map[rune]rune
	tradToSimp map[rune]rune
}

// NewTableConverter builds a ScriptConverter from a small built-in table
// of common transit-relevant simplified/traditional character pairs.
func NewTableConverter() ScriptConverter {
	pairs := []struct{ simp, trad rune }{
		{'站', '站'}, // station (identical)
		{'线', '線'}, // line
		{'东', '東'}, // east
		{'西', '西'}, // west (identical)
		{'南', '南'}, // south (identical)
		{'北', '北'}, // north (identical)
		{'车', '車'}, // vehicle
		{'门', '門'}, // gate
		{'机', '機'}, // machine/airplane
		{'场', '場'}, // field/airport
		{'铁', '鐵'}, // iron/rail
		{'路', '路'}, // road (identical)
		{'桥', '橋'}, // bridge
		{'湾', '灣'}, // bay
		{'总', '總'}, // general/total
		{'会', '會'}, // meeting
	}
	tc := &tableConverter{
		simpToTrad: make(map[rune]rune, len(pairs)),
		tradToSimp: make(map[rune]rune, len(pairs)),
	}
	for _, p := range pairs {
		tc.simpToTrad[p.simp] = p.trad
		tc.tradToSimp[p.trad] = p.simp
	}
	return tc
}

func (tc *tableConverter) convert(s string, table map[rune]rune) (string, bool) {
	changed := false
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if mapped, ok := table[r]; ok {
			out = append(out, mapped)
			if mapped != r {
				changed = true
			}
			continue
		}
		out = append(out, r)
	}
	return string(out), changed
}

func (tc *tableConverter) ToSimplified(s string) (string, bool) {
	return tc.convert(s, tc.tradToSimp)
}

func (tc *tableConverter) ToTraditional(s string) (string, bool) {
	return tc.convert(s, tc.simpToTrad)
}

func (tc *tableConverter) ToKanji(s string) (string, bool) {
	return "", false
}
