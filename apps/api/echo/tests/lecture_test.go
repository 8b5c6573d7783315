package tests

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/trezcool/academia/core/schedule"
)

func Test_lectureApi(t *testing.T) {
	total := func(software string) string {
		v := make(url.Values)
		v.Set("software", software)
		return "/v1/lectures/total?" + v.Encode()
	}

	tests := []httpTest{
		{name: "catalog", path: "/v1/lectures", wantData: marchallObj(t, schedule.DefaultCatalog().Entries())},
		{
			name: "total", path: total("Photoshop, Maya"),
			wantData: []byte(`{"software":"Photoshop, Maya","totalLectures":115,"unrecognized":[]}`),
		},
		{
			name: "partial match", path: total("photo"),
			wantData: []byte(`{"software":"photo","totalLectures":23,"unrecognized":[]}`),
		},
		{
			name: "unrecognized", path: total("Photoshop,, Fotoshop, Qwerty"),
			wantData: []byte(`{"software":"Photoshop,, Fotoshop, Qwerty","totalLectures":23,` +
				`"unrecognized":[{"name":"Fotoshop","suggestion":"Photoshop"},{"name":"Qwerty"}]}`),
		},
		{
			name: "empty", path: "/v1/lectures/total",
			wantData: []byte(`{"software":"","totalLectures":0,"unrecognized":[]}`),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodGet
	}
	runTests(t, tests)
}
