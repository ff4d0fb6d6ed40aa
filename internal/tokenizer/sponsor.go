package tokenizer

import "regexp"

// sponsorPattern finds copyright notices such as "© 2017 ACM." or
// "Copyright 2013 ACM." and, as a side effect, any bare year 19xx/20xx.
var sponsorPattern = regexp.MustCompile(` ?(?i:copyright[ \t]*)?(?:\(c\)|&#(?:169|xa9;)|©)?([ \t]+)?(?:19|20)[0-9]{2}`)

// RemoveSponsor cuts abstract at the start of the first copyright/year match.
// Text without a match is returned unchanged.
func RemoveSponsor(abstract string) string {
	loc := sponsorPattern.FindStringIndex(abstract)
	if loc == nil {
		return abstract
	}
	return abstract[:loc[0]]
}
