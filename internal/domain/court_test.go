package domain

import "testing"

func TestParseCourtID_Normalizes(t *testing.T) {
	cases := map[string]CourtID{
		"/cases/federal/appellate-courts/ca1/":  "/cases/federal/appellate-courts/ca1/",
		"cases/federal/appellate-courts/ca1":    "/cases/federal/appellate-courts/ca1/",
		"  //cases//california/supreme-court//": "/cases/california/supreme-court/",
	}
	for in, want := range cases {
		got, err := ParseCourtID(in)
		if err != nil {
			t.Fatalf("ParseCourtID(%q) 不期望错误：%v", in, err)
		}
		if got != want {
			t.Fatalf("ParseCourtID(%q)=%q，期望 %q", in, got, want)
		}
	}
}

func TestParseCourtID_RejectsEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "/", "///"} {
		if _, err := ParseCourtID(in); err == nil {
			t.Fatalf("ParseCourtID(%q) 期望错误，但得到 nil", in)
		}
	}
}

func TestCourtID_Dir(t *testing.T) {
	id := CourtID("/cases/federal/appellate-courts/ca1/")
	if got := id.Dir(); got != "cases_federal_appellate-courts_ca1" {
		t.Fatalf("Dir()=%q", got)
	}
}

func TestNewCatalog_DedupPreservesOrder(t *testing.T) {
	c := NewCatalog(
		CatalogEntry{ID: "/a/", Category: CategoryFederalAppellate},
		CatalogEntry{ID: "/b/", Category: CategoryState},
		CatalogEntry{ID: "/a/", Category: CategoryState},
		CatalogEntry{ID: ""},
	)
	ids := c.IDs()
	if len(ids) != 2 || ids[0] != "/a/" || ids[1] != "/b/" {
		t.Fatalf("IDs 不符合预期：%v", ids)
	}
	if !c.Contains("/b/") || c.Contains("/c/") {
		t.Fatalf("Contains 结果不正确")
	}
	// 返回副本：修改不影响目录本身。
	ids[0] = "/x/"
	if c.IDs()[0] != "/a/" {
		t.Fatalf("IDs 应返回副本")
	}
	if got := c.CountByCategory()[CategoryFederalAppellate]; got != 1 {
		t.Fatalf("federal-appellate 计数=%d，期望 1", got)
	}
}
