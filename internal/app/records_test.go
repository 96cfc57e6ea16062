package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/jude/internal/domain"
)

func TestListingPages_DedupRepeatedHrefs(t *testing.T) {
	initial := "https://law.justia.com/cases/federal/appellate-courts/ca1/2020/"
	pages := ListingPages(initial, []string{"?page=2", "?page=3", "?page=2"})

	require.Equal(t, []string{
		initial,
		initial + "?page=2",
		initial + "?page=3",
	}, pages)
}

func TestListingPages_NoPagination(t *testing.T) {
	initial := "https://law.justia.com/cases/federal/appellate-courts/ca1/2020/"
	require.Equal(t, []string{initial}, ListingPages(initial, nil))
}

func TestListingPages_HrefPointingAtInitialPage(t *testing.T) {
	initial := "https://law.justia.com/cases/federal/appellate-courts/ca1/2020/"
	pages := ListingPages(initial, []string{"", initial, "?page=2"})
	require.Len(t, pages, 2)
}

func TestFilterRecords_DropsSentinels(t *testing.T) {
	nolink := domain.CaseRecord{Citation: domain.NoLink, DetailURL: domain.NoLink}
	records := []domain.CaseRecord{
		{Citation: "a", DetailURL: "https://x/a.html"},
		nolink,
		{Citation: "b", DetailURL: "https://x/b.html"},
		nolink,
		{Citation: "c", DetailURL: "https://x/c.html"},
	}

	kept, dropped, dup := FilterRecords(records)
	require.Len(t, kept, 3)
	require.Equal(t, 2, dropped)
	require.Equal(t, 0, dup)
	require.Equal(t, "a", kept[0].Citation)
	require.Equal(t, "c", kept[2].Citation)
}

func TestFilterRecords_DuplicatesAcrossPages(t *testing.T) {
	records := []domain.CaseRecord{
		{Citation: "a", DetailURL: "https://x/a.html"},
		{Citation: "b", DetailURL: "https://x/b.html"},
		{Citation: "a", DetailURL: "https://x/a.html"},
	}

	kept, dropped, dup := FilterRecords(records)
	require.Len(t, kept, 2)
	require.Equal(t, 0, dropped)
	require.Equal(t, 1, dup)
}

func TestFilterRecords_Empty(t *testing.T) {
	kept, dropped, dup := FilterRecords(nil)
	require.Empty(t, kept)
	require.Zero(t, dropped)
	require.Zero(t, dup)
}
