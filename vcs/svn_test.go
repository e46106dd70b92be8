package vcs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

const svnInfoXML = `<?xml version="1.0" encoding="UTF-8"?>
<info>
<entry
   path="."
   revision="1187"
   kind="dir">
<url>https://svn.example.org/robots/branches/stable</url>
<relative-url>^/robots</relative-url>
<repository>
<root>https://svn.example.org</root>
<uuid>0b6a8e1e-22c4-4b8a-9f0e-8a1d4d43c2aa</uuid>
</repository>
</entry>
</info>`

func TestSvnBranchFromInfo(t *testing.T) {
	type info struct {
		URL, relativeURL, repoRoot string
	}
	cases := []struct {
		info
		branch string
	}{
		{
			info{
				URL:         "https://svn.example.org/robots",
				relativeURL: "^/robots",
				repoRoot:    "https://svn.example.org",
			},
			"trunk",
		},
		{
			info{
				URL:         "https://svn.example.org/robots/branches/stable",
				relativeURL: "^/robots",
				repoRoot:    "https://svn.example.org",
			},
			"stable",
		},
		{
			info{
				URL:         "https://svn.example.org/robots",
				relativeURL: "^/",
				repoRoot:    "https://svn.example.org/robots",
			},
			"trunk",
		},
	}
	for i := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			tc := &cases[i]
			var info svnInfo
			info.Entry.URL = tc.info.URL
			info.Entry.RelativeURL = tc.info.relativeURL
			info.Entry.Repository.Root = tc.info.repoRoot
			assert.Equal(t, tc.branch, svnBranchFromInfo(&info))
		})
	}
}

func TestSvnInfoUnmarshalXML(t *testing.T) {
	var s svnInfo
	err := s.unmarshalXML([]byte(svnInfoXML))
	assert.NoError(t, err)

	repo := SubversionRepository{info: s}
	assert.Equal(t, "https://svn.example.org/robots/branches/stable", repo.Project())
	assert.Equal(t, "dir", s.Entry.Kind)
	assert.Equal(t, "https://svn.example.org", s.Entry.Repository.Root)
	assert.Equal(t, Revision{Branch: "stable", RevisionID: "1187"}, repo.Head())
}
