package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/ProfilePack/internal/model"
)

func TestFamilyCount(t *testing.T) {
	tests := []struct {
		lengths int
		want    int
	}{
		{0, 0},
		{1, 1},
		{5, 1},
		{6, 2},
		{10, 2},
		{11, 3},
		{20, 3},
		{21, 4},
		{30, 4},
		{31, 5},
		{55, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FamilyCount(tt.lengths), "lengths=%d", tt.lengths)
	}
}

func TestNewConsolidator(t *testing.T) {
	c, err := NewConsolidator(model.FamilyKMeans)
	require.NoError(t, err)
	assert.IsType(t, KMeansConsolidator{}, c)

	c, err = NewConsolidator(model.FamilyFrequency)
	require.NoError(t, err)
	assert.IsType(t, FrequencyConsolidator{}, c)

	_, err = NewConsolidator("random")
	assert.Error(t, err)
}

// Three near-identical cross-sections whose independent boxes are
// 1200×1200, 1200×1111 and 1111×1200.
func nearIdenticalProfiles() ([]model.ProfileSpec, model.ContainerLimits) {
	return []model.ProfileSpec{
		model.NewProfileSpec("P100x100", 1, 100, 100, 1000),
		model.NewProfileSpec("P100x101", 1, 100, 101, 1000),
		model.NewProfileSpec("P101x100", 1, 101, 100, 1000),
	}, limits(100000, 1200, 1200, 1200)
}

func TestConsolidate_NearIdenticalShareOneFamily(t *testing.T) {
	for _, strategy := range []model.FamilyStrategy{model.FamilyKMeans, model.FamilyFrequency} {
		t.Run(string(strategy), func(t *testing.T) {
			s := defaultTestSettings()
			s.FamilyStrategy = strategy
			opt := New(s)
			profiles, lim := nearIdenticalProfiles()

			fr := opt.ConsolidateBoxFamilies(profiles, lim, 0)

			require.Len(t, fr.Families, 1)
			require.Len(t, fr.Assignments, 3)
			fam := fr.Families[0]
			assert.Len(t, fam.Members, 3)
			for i, a := range fr.Assignments {
				assert.Equal(t, profiles[i].ID, a.Profile.ID, "input order kept")
				require.NoError(t, a.Err)
				require.NotNil(t, a.Box)
				assert.Equal(t, 0, a.FamilyID)
				assert.Equal(t, fam.Width, a.Box.Width)
				assert.Equal(t, fam.Height, a.Box.Height)
				assert.GreaterOrEqual(t, a.Box.Density(a.Profile), model.GoodDensity)
			}
		})
	}
}

func TestConsolidate_KMeansCentroidFootprint(t *testing.T) {
	opt := New(defaultTestSettings())
	profiles, lim := nearIdenticalProfiles()

	fr := opt.ConsolidateBoxFamilies(profiles, lim, 0)

	require.Len(t, fr.Families, 1)
	// mean of (1200,1200), (1200,1111), (1111,1200), rounded up
	assert.Equal(t, 1171, fr.Families[0].Width)
	assert.Equal(t, 1171, fr.Families[0].Height)
	assert.Equal(t, 121, fr.Assignments[0].Box.ItemCount)
}

func TestConsolidate_FrequencyPicksFirstOnTie(t *testing.T) {
	s := defaultTestSettings()
	s.FamilyStrategy = model.FamilyFrequency
	opt := New(s)
	profiles, lim := nearIdenticalProfiles()

	fr := opt.ConsolidateBoxFamilies(profiles, lim, 0)

	require.Len(t, fr.Families, 1)
	assert.Equal(t, 1200, fr.Families[0].Width)
	assert.Equal(t, 1200, fr.Families[0].Height)
	assert.Equal(t, 132, fr.Assignments[1].Box.ItemCount)
}

func TestConsolidate_LowDensityKeepsIndependentBox(t *testing.T) {
	s := defaultTestSettings()
	s.FamilyStrategy = model.FamilyFrequency
	opt := New(s)
	lim := limits(100000, 1200, 1200, 1200)
	profiles := []model.ProfileSpec{
		model.NewProfileSpec("small", 1, 100, 100, 1000), // 1200×1200
		model.NewProfileSpec("big", 1, 500, 500, 1000),   // 1000×1000
	}

	fr := opt.ConsolidateBoxFamilies(profiles, lim, 0)

	require.Len(t, fr.Families, 1)
	assert.Equal(t, []string{profiles[0].ID}, fr.Families[0].Members)
	assert.Equal(t, 0, fr.Assignments[0].FamilyID)

	big := fr.Assignments[1]
	assert.Equal(t, model.NoFamily, big.FamilyID, "2×2 in 1200×1200 is below the density floor")
	require.NotNil(t, big.Box)
	assert.Equal(t, "1000×1000×1000", big.Box.Dimensions())
}

func TestConsolidate_MaxFamiliesCaps(t *testing.T) {
	opt := New(defaultTestSettings())
	lim := limits(100000, 1200, 1200, 1200)
	var profiles []model.ProfileSpec
	for _, cut := range []float64{500, 600, 700, 800, 900, 1000} {
		profiles = append(profiles, model.NewProfileSpec("p", 1, 100, 100, cut))
		profiles = append(profiles, model.NewProfileSpec("q", 1, 300, 200, cut))
	}
	require.Equal(t, 2, FamilyCount(6))

	fr := opt.ConsolidateBoxFamilies(profiles, lim, 1)

	assert.LessOrEqual(t, len(fr.Families), 1)
}

func TestConsolidate_UnpackableProfile(t *testing.T) {
	opt := New(defaultTestSettings())
	lim := limits(1000, 1200, 1200, 1200)
	profiles := []model.ProfileSpec{
		model.NewProfileSpec("ok", 1, 100, 100, 1000),
		model.NewProfileSpec("wide", 1, 1300, 100, 1000),
	}

	fr := opt.ConsolidateBoxFamilies(profiles, lim, 0)

	wide := fr.Assignments[1]
	assert.Nil(t, wide.Box)
	assert.Equal(t, model.NoFamily, wide.FamilyID)
	require.Error(t, wide.Err)
	assert.True(t, errors.Is(wide.Err, model.ErrNoFeasibleBox))
	assert.True(t, errors.Is(wide.Err, model.ErrNoFeasibleFamily))
	assert.Equal(t, "no_feasible_family", model.ErrorKind(wide.Err))
}

func TestConsolidate_DegenerateProfileKeepsCause(t *testing.T) {
	opt := New(defaultTestSettings())
	profiles := []model.ProfileSpec{
		model.NewProfileSpec("ok", 1, 100, 100, 1000),
		model.NewProfileSpec("weightless", 0, 100, 100, 1000),
	}

	fr := opt.ConsolidateBoxFamilies(profiles, model.DefaultContainerLimits(), 0)

	assert.ErrorIs(t, fr.Assignments[1].Err, model.ErrDegenerateItem)
	assert.Nil(t, fr.Assignments[1].Box)
}

func TestConsolidate_Empty(t *testing.T) {
	opt := New(defaultTestSettings())
	fr := opt.ConsolidateBoxFamilies(nil, model.DefaultContainerLimits(), 0)
	assert.Empty(t, fr.Assignments)
	assert.Empty(t, fr.Families)
}

func box(w, h int) model.BoxCandidate {
	return model.BoxCandidate{Width: w, Height: h, Length: 1000, WidthCount: 1, HeightCount: 1, LengthCount: 1, ItemCount: 1}
}

func TestKMeansConsolidator_TwoClusters(t *testing.T) {
	boxes := []model.BoxCandidate{box(1200, 1200), box(600, 600), box(1190, 1180), box(610, 590)}

	got := KMeansConsolidator{}.Footprints(boxes, 2, limits(1000, 1200, 1200, 1200))

	assert.Equal(t, []Footprint{{1195, 1190}, {605, 595}}, got)
}

func TestKMeansConsolidator_ClampsToContainer(t *testing.T) {
	boxes := []model.BoxCandidate{box(1200, 1200), box(1200, 1200)}

	got := KMeansConsolidator{}.Footprints(boxes, 1, limits(1000, 1100, 1150, 1200))

	assert.Equal(t, []Footprint{{1100, 1150}}, got)
}

func TestFrequencyConsolidator_MostCommonFirst(t *testing.T) {
	boxes := []model.BoxCandidate{box(500, 500), box(800, 600), box(800, 600), box(400, 400), box(400, 400)}

	got := FrequencyConsolidator{}.Footprints(boxes, 2, model.DefaultContainerLimits())

	assert.Equal(t, []Footprint{{800, 600}, {400, 400}}, got)
}

func TestFamilyBox_WeightLimitsLayers(t *testing.T) {
	p := model.NewProfileSpec("p", 10, 100, 100, 500) // 5 kg per item
	lim := limits(1000, 1200, 1200, 2400)

	b, ok := familyBox(p, Footprint{Width: 1000, Height: 1000}, lim)

	require.True(t, ok)
	// 100 items per layer at 5 kg: two layers reach 1000 kg, length allows four
	assert.Equal(t, 2, b.LengthCount)
	assert.Equal(t, 200, b.ItemCount)
	assert.Equal(t, 1000, b.Length)
}

func TestFamilyBox_FootprintTooSmall(t *testing.T) {
	p := model.NewProfileSpec("p", 1, 300, 300, 500)
	_, ok := familyBox(p, Footprint{Width: 200, Height: 1000}, model.DefaultContainerLimits())
	assert.False(t, ok)
}
