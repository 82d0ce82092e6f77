// Package linker pairs up names that refer to the same legislator across
// two sources that spell them differently ("Bobby Smith" on one page,
// "Robert Smith" in a roster).
package linker

import (
	"github.com/antzucaro/matchr"

	"legiscrape/lib/textutil"
)

type ImplicitLink struct {
	Left        string
	Right       string
	Correlation float64
}

// CreateImplicitLinks pairs every name of the shorter list with one name of
// the longer list. Names that normalize identically are paired first, the
// rest go to their most similar unpaired counterpart by Jaro-Winkler
// similarity when it reaches threshold. Left and Right in the result
// always refer to leftList and rightList.
func CreateImplicitLinks(leftList, rightList []string, threshold float64) []ImplicitLink {
	swapped := false
	if len(rightList) < len(leftList) {
		leftList, rightList = rightList, leftList
		swapped = true
	}

	newLink := func(left, right string, correlation float64) ImplicitLink {
		if swapped {
			return ImplicitLink{Left: right, Right: left, Correlation: correlation}
		}
		return ImplicitLink{Left: left, Right: right, Correlation: correlation}
	}

	var result []ImplicitLink
	matchedLeft := make(map[int]struct{})
	matchedRight := make(map[int]struct{})

	for li, left := range leftList {
		normalized := textutil.NormalizeName(left)
		for ri, right := range rightList {
			if _, isMatchedRight := matchedRight[ri]; isMatchedRight {
				continue
			}
			if normalized == textutil.NormalizeName(right) {
				result = append(result, newLink(left, right, 1))
				matchedLeft[li] = struct{}{}
				matchedRight[ri] = struct{}{}
				break
			}
		}
	}

	for li, left := range leftList {
		if _, isMatchedLeft := matchedLeft[li]; isMatchedLeft {
			continue
		}

		mostSimilarity := 0.0
		mostSimilarRight := -1
		for ri, right := range rightList {
			if _, isMatchedRight := matchedRight[ri]; isMatchedRight {
				continue
			}
			similarity := similarity(left, right)
			if similarity > mostSimilarity {
				mostSimilarity = similarity
				mostSimilarRight = ri
			}
		}

		if mostSimilarRight >= 0 && mostSimilarity >= threshold {
			result = append(result, newLink(left, rightList[mostSimilarRight], mostSimilarity))
			matchedLeft[li] = struct{}{}
			matchedRight[mostSimilarRight] = struct{}{}
		}
	}

	return result
}

func similarity(a, b string) float64 {
	return matchr.JaroWinkler(textutil.NormalizeName(a), textutil.NormalizeName(b), false)
}

// BestMatch returns the candidate most similar to name, ok is false when
// no candidate reaches threshold.
func BestMatch(name string, candidates []string, threshold float64) (match string, correlation float64, ok bool) {
	for _, candidate := range candidates {
		s := similarity(name, candidate)
		if s > correlation {
			match = candidate
			correlation = s
		}
	}
	if match == "" || correlation < threshold {
		return "", correlation, false
	}
	return match, correlation, true
}
