package junit

import (
	"encoding/xml"
	"io"
	"log"
	"os"
)

// Outcome summarizes a JUnit report: how many cases passed out of how
// many, and the identities of the cases that did not.
type Outcome struct {
	Passed  int      `json:"passed"`
	Total   int      `json:"total"`
	Failing []string `json:"fails"`
}

type testCase struct {
	Name      string `xml:"name,attr"`
	ClassName string `xml:"classname,attr"`
	// Any child element (failure, error, skipped, ...) marks the case
	// as not passing.
	Children []anyElement `xml:",any"`
}

type anyElement struct {
	XMLName xml.Name
}

type testSuite struct {
	Suites []testSuite `xml:"testsuite"`
	Cases  []testCase  `xml:"testcase"`
}

// document accepts either a <testsuites> root or a bare <testsuite>.
type document struct {
	XMLName xml.Name
	Suites  []testSuite `xml:"testsuite"`
	Cases   []testCase  `xml:"testcase"`
}

// Parse reads a JUnit XML report. Every case in every suite counts
// toward the total; a case with any child element counts as failing.
func Parse(r io.Reader) (Outcome, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return Outcome{Failing: []string{}}, err
	}
	out := Outcome{Failing: []string{}}
	walk(testSuite{Suites: doc.Suites, Cases: doc.Cases}, &out)
	return out, nil
}

// ParseFile parses the report at path. A missing or unparseable file is
// not an error: it means no evidence of testing, so the outcome is zero.
func ParseFile(path string) Outcome {
	f, err := os.Open(path)
	if err != nil {
		return Outcome{Failing: []string{}}
	}
	defer f.Close()
	out, err := Parse(f)
	if err != nil {
		log.Printf("junit: parse %s: %v", path, err)
		return Outcome{Failing: []string{}}
	}
	return out
}

func walk(s testSuite, out *Outcome) {
	for _, tc := range s.Cases {
		out.Total++
		if len(tc.Children) > 0 {
			out.Failing = append(out.Failing, caseID(tc))
		} else {
			out.Passed++
		}
	}
	for _, sub := range s.Suites {
		walk(sub, out)
	}
}

func caseID(tc testCase) string {
	if tc.ClassName != "" {
		return tc.ClassName + "." + tc.Name
	}
	return tc.Name
}
