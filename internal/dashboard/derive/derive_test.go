package derive

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partner-dashboard/internal/models"
)

func makePartners(n int) []models.Partner {
	out := make([]models.Partner, n)
	for i := range out {
		out[i] = models.Partner{
			Name:               fmt.Sprintf("p%02d", i),
			ValueScore:         float64(i),
			WasteScore:         float64(n - i),
			DaysSinceLastQuote: i * 10,
			Rank:               i + 1,
		}
	}
	return out
}

func assertContiguousRanks(t *testing.T, ps []models.Partner) {
	t.Helper()
	for i, p := range ps {
		assert.Equal(t, i+1, p.Rank, "rank of %s", p.Name)
	}
}

func TestBest(t *testing.T) {
	in := makePartners(25)
	out := Best(in, DefaultTopN)

	require.Len(t, out, 20)
	assert.Equal(t, "p24", out[0].Name)
	assert.Equal(t, "p05", out[19].Name)
	assertContiguousRanks(t, out)

	// input untouched
	assert.Equal(t, "p00", in[0].Name)
	assert.Equal(t, 1, in[0].Rank)
}

func TestWorst(t *testing.T) {
	out := Worst(makePartners(25), DefaultTopN)

	require.Len(t, out, 20)
	assert.Equal(t, "p00", out[0].Name)
	assertContiguousRanks(t, out)
}

func TestBest_FewerThanN(t *testing.T) {
	out := Best(makePartners(3), DefaultTopN)
	assert.Len(t, out, 3)
	assertContiguousRanks(t, out)
	assert.NotNil(t, Best(nil, DefaultTopN))
}

func TestSleeping(t *testing.T) {
	in := makePartners(12)
	in[1].Dormant = true

	out := Sleeping(in, DefaultDormantDays)

	var got []string
	for _, p := range out {
		got = append(got, p.Name)
	}
	assert.Equal(t, []string{"p11", "p10", "p09", "p01"}, got)
	assertContiguousRanks(t, out)
}

func TestIdleAtLeast(t *testing.T) {
	in := makePartners(20)
	in[2].Dormant = true
	sleeping := Sleeping(in, 90)

	out := IdleAtLeast(sleeping, 180)
	require.Len(t, out, 2)
	assert.Equal(t, "p19", out[0].Name)
	assert.Equal(t, "p18", out[1].Name)
	assertContiguousRanks(t, out)

	assert.Len(t, IdleAtLeast(sleeping, 0), len(sleeping))
}

func TestComplete(t *testing.T) {
	supplied := []models.Partner{{Name: "upstream", Rank: 1}}
	d := models.Dashboard{Partners: makePartners(30), TopBest: supplied}

	out := Complete(d, Options{})

	assert.Equal(t, supplied, out.TopBest)
	assert.Len(t, out.TopWorst, 20)
	assert.Len(t, out.Sleeping, 21)
	assertContiguousRanks(t, out.Sleeping)
}

func TestComplete_CustomOptions(t *testing.T) {
	out := Complete(models.Dashboard{Partners: makePartners(30)}, Options{TopN: 5, DormantDays: 250})

	assert.Len(t, out.TopBest, 5)
	assert.Len(t, out.TopWorst, 5)
	assert.Len(t, out.Sleeping, 5)
}

func TestComplete_NoPartners(t *testing.T) {
	d := models.Dashboard{Sleeping: []models.Partner{{Name: "s"}}}
	assert.Equal(t, d, Complete(d, Options{}))
}
