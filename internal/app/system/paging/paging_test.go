package paging

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTrimPage(t *testing.T) {
	tests := []struct {
		name       string
		rows       []int
		before     string
		after      string
		wantLen    int
		wantResult Result
	}{
		{
			name:       "first page with no extra",
			rows:       []int{1, 2, 3},
			wantLen:    3,
			wantResult: Result{HasPrev: false, HasNext: false},
		},
		{
			name:       "first page with extra (has next)",
			rows:       make([]int, PageSize+1),
			wantLen:    PageSize,
			wantResult: Result{HasPrev: false, HasNext: true},
		},
		{
			name:       "forward page with extra",
			rows:       make([]int, PageSize+1),
			after:      "cursor123",
			wantLen:    PageSize,
			wantResult: Result{HasPrev: true, HasNext: true},
		},
		{
			name:       "forward page without extra",
			rows:       []int{1, 2, 3},
			after:      "cursor123",
			wantLen:    3,
			wantResult: Result{HasPrev: true, HasNext: false},
		},
		{
			name:       "backward page with extra",
			rows:       make([]int, PageSize+1),
			before:     "cursor123",
			wantLen:    PageSize,
			wantResult: Result{HasPrev: true, HasNext: true},
		},
		{
			name:       "backward page without extra",
			rows:       []int{1, 2, 3},
			before:     "cursor123",
			wantLen:    3,
			wantResult: Result{HasPrev: false, HasNext: true},
		},
		{
			name:       "empty rows",
			rows:       []int{},
			wantLen:    0,
			wantResult: Result{HasPrev: false, HasNext: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([]int, len(tt.rows))
			copy(rows, tt.rows)

			got := TrimPage(&rows, tt.before, tt.after)

			if len(rows) != tt.wantLen {
				t.Errorf("TrimPage() rows len = %d, want %d", len(rows), tt.wantLen)
			}
			if got != tt.wantResult {
				t.Errorf("TrimPage() = %+v, want %+v", got, tt.wantResult)
			}
		})
	}
}

func TestConfigureKeyset(t *testing.T) {
	tests := []struct {
		name      string
		before    string
		after     string
		wantDir   Direction
		wantOrder int
	}{
		{
			name:      "no cursors (first page)",
			wantDir:   Forward,
			wantOrder: 1,
		},
		{
			name:      "after cursor (forward)",
			after:     "somecursor",
			wantDir:   Forward,
			wantOrder: 1,
		},
		{
			name:      "before cursor (backward)",
			before:    "somecursor",
			wantDir:   Backward,
			wantOrder: -1,
		},
		{
			name:      "both cursors (before takes precedence)",
			before:    "beforecursor",
			after:     "aftercursor",
			wantDir:   Backward,
			wantOrder: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConfigureKeyset(tt.before, tt.after)
			if got.Direction != tt.wantDir {
				t.Errorf("ConfigureKeyset() Direction = %v, want %v", got.Direction, tt.wantDir)
			}
			if got.SortOrder != tt.wantOrder {
				t.Errorf("ConfigureKeyset() SortOrder = %v, want %v", got.SortOrder, tt.wantOrder)
			}
		})
	}
}

func TestConfigureKeysetDesc(t *testing.T) {
	// A date-descending listing sorts -1 going forward and +1 going backward.
	fwd := ConfigureKeysetDesc("", "aftercursor")
	if fwd.Direction != Forward || fwd.SortOrder != -1 {
		t.Errorf("forward = %+v, want Forward with SortOrder -1", fwd)
	}

	back := ConfigureKeysetDesc("beforecursor", "")
	if back.Direction != Backward || back.SortOrder != 1 {
		t.Errorf("backward = %+v, want Backward with SortOrder 1", back)
	}
}

func TestReverse(t *testing.T) {
	tests := []struct {
		name  string
		input []int
		want  []int
	}{
		{"empty", []int{}, []int{}},
		{"single", []int{1}, []int{1}},
		{"two", []int{1, 2}, []int{2, 1}},
		{"odd", []int{1, 2, 3}, []int{3, 2, 1}},
		{"even", []int{1, 2, 3, 4}, []int{4, 3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([]int, len(tt.input))
			copy(rows, tt.input)
			Reverse(rows)
			for i, v := range rows {
				if v != tt.want[i] {
					t.Errorf("Reverse() got %v, want %v", rows, tt.want)
					break
				}
			}
		})
	}
}

func TestBuildCursors(t *testing.T) {
	type row struct {
		Key string
		ID  primitive.ObjectID
	}
	keyFn := func(r row) string { return r.Key }
	idFn := func(r row) primitive.ObjectID { return r.ID }

	t.Run("empty rows", func(t *testing.T) {
		prev, next := BuildCursors([]row{}, keyFn, idFn)
		if prev != "" || next != "" {
			t.Errorf("BuildCursors(empty) = (%q, %q), want empty strings", prev, next)
		}
	})

	t.Run("single row", func(t *testing.T) {
		rows := []row{{Key: "only", ID: primitive.NewObjectID()}}
		prev, next := BuildCursors(rows, keyFn, idFn)
		if prev == "" || next == "" {
			t.Fatal("BuildCursors(single) returned an empty cursor")
		}
		if prev != next {
			t.Error("BuildCursors(single) prev and next should be equal")
		}
	})

	t.Run("multiple rows", func(t *testing.T) {
		rows := []row{
			{Key: "first", ID: primitive.NewObjectID()},
			{Key: "last", ID: primitive.NewObjectID()},
		}
		prev, next := BuildCursors(rows, keyFn, idFn)
		if prev == "" || next == "" {
			t.Fatal("BuildCursors(multiple) returned an empty cursor")
		}
		if prev == next {
			t.Error("BuildCursors(multiple) prev and next should differ")
		}
	})
}
