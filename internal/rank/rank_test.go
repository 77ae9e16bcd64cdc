package rank

import (
	"math"
	"reflect"
	"testing"

	"github.com/janseva-labs/janseva-bot-go/internal/model"
)

var puneOrigin = model.Coordinates{Lat: 18.5074, Lon: 73.8077} // Kothrud

func office(name, addr string, kind model.SourceKind, conf float64, coords *model.Coordinates) model.CandidateOffice {
	return model.CandidateOffice{
		Name:             name,
		Address:          addr,
		SourceKind:       kind,
		SourceConfidence: conf,
		Coordinates:      coords,
	}
}

func names(offices []model.CandidateOffice) []string {
	out := make([]string, len(offices))
	for i, o := range offices {
		out[i] = o.Name
	}
	return out
}

func TestRank_NearestFirst(t *testing.T) {
	r := New()

	far := office("RTO Pune", "Sangam Bridge", model.SourceLive, 0.9, &model.Coordinates{Lat: 18.5308, Lon: 73.8746})
	near := office("Passport Seva Kendra", "Kothrud Depot", model.SourceLive, 0.7, &model.Coordinates{Lat: 18.5010, Lon: 73.8077})

	ranked := r.Rank([]model.CandidateOffice{far, near}, &puneOrigin)

	want := []string{"Passport Seva Kendra", "RTO Pune"}
	if got := names(ranked); !reflect.DeepEqual(got, want) {
		t.Errorf("Rank() order = %v, want %v", got, want)
	}
	if ranked[0].DistanceKm == nil || ranked[1].DistanceKm == nil {
		t.Fatal("ranked candidates with coordinates must carry a distance")
	}
	if *ranked[0].DistanceKm > *ranked[1].DistanceKm {
		t.Error("first candidate must be nearer than second")
	}
}

func TestRank_CoordinatelessAfterCoordinated(t *testing.T) {
	r := New()

	noCoordsA := office("Tehsil Office A", "Shivajinagar", model.SourceIndex, 0.9, nil)
	noCoordsB := office("Tehsil Office B", "Camp", model.SourceIndex, 0.8, nil)
	withCoords := office("RTO Pune", "Sangam Bridge", model.SourceLive, 0.5, &model.Coordinates{Lat: 18.5308, Lon: 73.8746})

	ranked := r.Rank([]model.CandidateOffice{noCoordsA, noCoordsB, withCoords}, &puneOrigin)

	// Coordinate-less candidates come after, preserving their input order.
	want := []string{"RTO Pune", "Tehsil Office A", "Tehsil Office B"}
	if got := names(ranked); !reflect.DeepEqual(got, want) {
		t.Errorf("Rank() order = %v, want %v", got, want)
	}
}

func TestRank_DeduplicateKeepsHigherConfidence(t *testing.T) {
	r := New()

	lowConf := office("RTO Pune", "38 Sangam Bridge", model.SourceIndex, 0.6, nil)
	highConf := office("rto  pune", "38  sangam bridge", model.SourceLive, 0.8, nil)

	ranked := r.Rank([]model.CandidateOffice{lowConf, highConf}, nil)

	if len(ranked) != 1 {
		t.Fatalf("Rank() returned %d candidates, want 1 after dedup", len(ranked))
	}
	if ranked[0].SourceConfidence != 0.8 {
		t.Errorf("kept confidence = %v, want 0.8", ranked[0].SourceConfidence)
	}
}

func TestRank_TieBreakPrefersLiveOverIndexOverGeneric(t *testing.T) {
	r := New()

	generic := office("Ward Office", "Main Road", model.SourceGeneric, 0.5, nil)
	index := office("Ward Office", "Main Road", model.SourceIndex, 0.5, nil)
	live := office("Ward Office", "Main Road", model.SourceLive, 0.5, nil)

	ranked := r.Rank([]model.CandidateOffice{generic, index, live}, nil)

	if len(ranked) != 1 {
		t.Fatalf("Rank() returned %d candidates, want 1", len(ranked))
	}
	if ranked[0].SourceKind != model.SourceLive {
		t.Errorf("kept source = %v, want live", ranked[0].SourceKind)
	}
}

func TestRank_Idempotent(t *testing.T) {
	r := New()

	in := []model.CandidateOffice{
		office("A", "addr a", model.SourceLive, 0.9, &model.Coordinates{Lat: 18.51, Lon: 73.81}),
		office("B", "addr b", model.SourceLive, 0.8, &model.Coordinates{Lat: 18.60, Lon: 73.90}),
		office("C", "addr c", model.SourceIndex, 0.7, nil),
	}

	once := r.Rank(in, &puneOrigin)
	twice := r.Rank(once, &puneOrigin)

	if !reflect.DeepEqual(names(once), names(twice)) {
		t.Errorf("ranking is not idempotent: %v then %v", names(once), names(twice))
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	pune := model.Coordinates{Lat: 18.5204, Lon: 73.8567}
	mumbai := model.Coordinates{Lat: 19.0760, Lon: 72.8777}

	d := Haversine(pune, mumbai)
	// Roughly 120 km between the two city centers.
	if math.Abs(d-120) > 10 {
		t.Errorf("Haversine(pune, mumbai) = %v km, want ~120 km", d)
	}

	if z := Haversine(pune, pune); z != 0 {
		t.Errorf("Haversine(x, x) = %v, want 0", z)
	}
}
