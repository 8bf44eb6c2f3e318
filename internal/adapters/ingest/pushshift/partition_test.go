package pushshift

import "testing"

func TestPartitionNames(t *testing.T) {
	t.Parallel()

	p := Partition{Year: 2021, Month: 1}
	if p.String() != "2021-01" {
		t.Fatalf("String = %q", p.String())
	}
	if p.Table(Comments) != "com_2021_01" || p.Table(Submissions) != "sub_2021_01" {
		t.Fatalf("Table wrong: %s %s", p.Table(Comments), p.Table(Submissions))
	}
	if p.ArchiveName(Submissions) != "RS_2021-01.zst" || p.ArchiveName(Comments) != "RC_2021-01.zst" {
		t.Fatalf("ArchiveName wrong")
	}
	// names must round-trip through the classifier
	c, ok := Classify(p.ArchiveName(Comments))
	if !ok || c.Partition != p || c.Kind != Comments {
		t.Fatalf("round trip failed: %+v %v", c, ok)
	}
}

func TestParsePartition(t *testing.T) {
	t.Parallel()

	p, err := ParsePartition("2019-11")
	if err != nil || p != (Partition{2019, 11}) {
		t.Fatalf("ParsePartition = %+v, %v", p, err)
	}
	for _, bad := range []string{"2019-13", "2019-1", "201911", "", "2019-11-01"} {
		if _, err := ParsePartition(bad); err == nil {
			t.Fatalf("ParsePartition(%q) should fail", bad)
		}
	}
}

func TestMonthRange(t *testing.T) {
	t.Parallel()

	got := MonthRange(Partition{2019, 11}, Partition{2020, 2})
	want := []Partition{{2019, 11}, {2019, 12}, {2020, 1}, {2020, 2}}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if one := MonthRange(Partition{2020, 5}, Partition{2020, 5}); len(one) != 1 {
		t.Fatalf("single month range = %v", one)
	}
	if none := MonthRange(Partition{2020, 5}, Partition{2020, 4}); len(none) != 0 {
		t.Fatalf("reversed range should be empty, got %v", none)
	}
}
