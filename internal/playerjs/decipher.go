package playerjs

import (
	"fmt"
	"regexp"
	"strconv"
)

// Decipherer parses the signature-cipher actions object out of a
// specific player JS body. It holds no exported surface: ExtractCipherSteps
// is the only production entry point, and its CipherSteps result is what
// gets memoized and applied.
type Decipherer struct {
	jsBody []byte
}

const (
	jsVarStr   = "[a-zA-Z_\\$][a-zA-Z_0-9]*"
	reverseStr = ":function\\(a\\)\\{" +
		"(?:return )?a\\.reverse\\(\\)" +
		"\\}"
	spliceStr = ":function\\(a,b\\)\\{" +
		"a\\.splice\\(0,b\\)" +
		"\\}"
	swapStr = ":function\\(a,b\\)\\{" +
		"var c=a\\[0\\];a\\[0\\]=a\\[b(?:%a\\.length)?\\];a\\[b(?:%a\\.length)?\\]=c(?:;return a)?" +
		"\\}"
)

var (
	actionsObjRegexp = regexp.MustCompile(fmt.Sprintf(
		"(?:var|let|const)\\s+(%s)=\\{((?:(?:%s%s|%s%s|%s%s),?\\n?)+)\\}\\s*;?",
		jsVarStr, jsVarStr, swapStr, jsVarStr, spliceStr, jsVarStr, reverseStr))
	reverseRegexp = regexp.MustCompile(fmt.Sprintf("(?m)(?:^|,)(%s)%s", jsVarStr, reverseStr))
	spliceRegexp  = regexp.MustCompile(fmt.Sprintf("(?m)(?:^|,)(%s)%s", jsVarStr, spliceStr))
	swapRegexp    = regexp.MustCompile(fmt.Sprintf("(?m)(?:^|,)(%s)%s", jsVarStr, swapStr))

	actionsFuncRegexps = []*regexp.Regexp{
		// function XX(a){...}
		regexp.MustCompile(fmt.Sprintf(
			"function(?:\\s+%s)?\\(a\\)\\{"+
				"a=a\\.split\\([^\\)]*\\);\\s*"+
				"((?:(?:a=)?%s(?:\\.%s|\\[[^\\]]+\\])\\(a,\\d+\\);?\\s*)+)"+
				"return a\\.join\\([^\\)]*\\)"+
				"\\}", jsVarStr, jsVarStr, jsVarStr)),
		// XX=function(a){...}
		regexp.MustCompile(fmt.Sprintf(
			"%s\\s*=\\s*function\\(a\\)\\{"+
				"a=a\\.split\\([^\\)]*\\);\\s*"+
				"((?:(?:a=)?%s(?:\\.%s|\\[[^\\]]+\\])\\(a,\\d+\\);?\\s*)+)"+
				"return a\\.join\\([^\\)]*\\)"+
				"\\}", jsVarStr, jsVarStr, jsVarStr)),
	}
)

// parseDecipherSteps extracts the actions object and its calling function
// out of the player JS and translates them into the declarative CipherSteps
// program ExtractCipherSteps memoizes.
func (d *Decipherer) parseDecipherSteps() (CipherSteps, error) {
	objResult := actionsObjRegexp.FindSubmatch(d.jsBody)
	funcBody := d.findActionsFuncBody()
	if len(objResult) < 3 || len(funcBody) == 0 {
		return nil, fmt.Errorf("error parsing signature tokens (#obj=%d, #func=%d)", len(objResult), len(funcBody))
	}

	obj := objResult[1]
	objBody := objResult[2]

	var reverseKey, spliceKey, swapKey string
	if result := reverseRegexp.FindSubmatch(objBody); len(result) > 1 {
		reverseKey = string(result[1])
	}
	if result := spliceRegexp.FindSubmatch(objBody); len(result) > 1 {
		spliceKey = string(result[1])
	}
	if result := swapRegexp.FindSubmatch(objBody); len(result) > 1 {
		swapKey = string(result[1])
	}

	regex, err := regexp.Compile(fmt.Sprintf(
		"(?:a=)?%s(?:\\.(%s|%s|%s)|\\[(?:\"(%s|%s|%s)\"|'(%s|%s|%s)')\\])\\(a,(\\d+)\\)",
		regexp.QuoteMeta(string(obj)),
		regexp.QuoteMeta(reverseKey),
		regexp.QuoteMeta(spliceKey),
		regexp.QuoteMeta(swapKey),
		regexp.QuoteMeta(reverseKey),
		regexp.QuoteMeta(spliceKey),
		regexp.QuoteMeta(swapKey),
		regexp.QuoteMeta(reverseKey),
		regexp.QuoteMeta(spliceKey),
		regexp.QuoteMeta(swapKey),
	))
	if err != nil {
		return nil, err
	}

	var steps CipherSteps
	for _, s := range regex.FindAllSubmatch(funcBody, -1) {
		if len(s) < 5 {
			continue
		}
		key := firstNonEmptySubmatch(s[1], s[2], s[3])
		arg, _ := strconv.Atoi(string(s[4]))
		switch key {
		case reverseKey:
			steps = append(steps, CipherStep{Kind: CipherStepReverse})
		case swapKey:
			steps = append(steps, CipherStep{Kind: CipherStepSwap, Param: arg})
		case spliceKey:
			steps = append(steps, CipherStep{Kind: CipherStepSplice, Param: arg})
		}
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("error parsing signature operations (empty op list)")
	}
	return steps, nil
}

func (d *Decipherer) findActionsFuncBody() []byte {
	for _, re := range actionsFuncRegexps {
		if m := re.FindSubmatch(d.jsBody); len(m) > 1 {
			return m[1]
		}
	}
	return nil
}

func firstNonEmptySubmatch(groups ...[]byte) string {
	for _, g := range groups {
		if len(g) > 0 {
			return string(g)
		}
	}
	return ""
}
