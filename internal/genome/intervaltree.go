package genome

import "sort"

// IntervalTree answers "which transcripts contain this position" in
// O(log n + k) using start-sorted intervals with a suffix-max of ends.
// Built once per contig; never modified afterwards.
type IntervalTree struct {
	intervals []interval
	maxEnd    []int64 // maxEnd[i] = max(end) over intervals[i:]
}

type interval struct {
	start      int64
	end        int64
	transcript *Transcript
}

// BuildIntervalTree creates an interval tree from a slice of transcripts.
func BuildIntervalTree(transcripts []*Transcript) *IntervalTree {
	if len(transcripts) == 0 {
		return &IntervalTree{}
	}

	intervals := make([]interval, len(transcripts))
	for i, t := range transcripts {
		intervals[i] = interval{start: t.Start, end: t.End, transcript: t}
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	maxEnd := make([]int64, len(intervals))
	maxEnd[len(intervals)-1] = intervals[len(intervals)-1].end
	for i := len(intervals) - 2; i >= 0; i-- {
		maxEnd[i] = intervals[i].end
		if maxEnd[i+1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i+1]
		}
	}

	return &IntervalTree{intervals: intervals, maxEnd: maxEnd}
}

// FindOverlaps returns all transcripts whose [Start, End] span contains pos.
func (t *IntervalTree) FindOverlaps(pos int64) []*Transcript {
	if len(t.intervals) == 0 {
		return nil
	}

	var result []*Transcript

	// Candidates all have start <= pos; hi is the first index beyond them.
	hi := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].start > pos
	})

	for i := 0; i < hi; i++ {
		// Nothing at or after i can reach pos.
		if t.maxEnd[i] < pos {
			break
		}
		if t.intervals[i].end >= pos {
			result = append(result, t.intervals[i].transcript)
		}
	}

	return result
}
