// Package match provides name normalization, Levenshtein distance calculation
// and close-match suggestions for namespace names.
//
// Key functions:
//   - NormalizeName: folds case and strips separators before comparing
//   - Levenshtein: computes edit distance between strings
//   - Suggest: ranks declared names against a misspelled one
package match
