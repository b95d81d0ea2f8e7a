package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sethgrid/watchbuddy/internal/conditions"
	"github.com/sethgrid/watchbuddy/internal/pet"
)

type fakeSaver struct {
	mu    sync.Mutex
	saves []pet.State
}

func (f *fakeSaver) Save(s pet.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, s)
}

func (f *fakeSaver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeSaver) last() pet.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves[len(f.saves)-1]
}

type moodCall struct {
	mood  conditions.Mood
	force bool
}

type fakeListener struct {
	mu      sync.Mutex
	moods   []moodCall
	effects []Effect
}

func (f *fakeListener) SetMood(m conditions.Mood, force bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moods = append(f.moods, moodCall{m, force})
}

func (f *fakeListener) Effect(e Effect) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.effects = append(f.effects, e)
}

func newEngine(t *testing.T, s pet.State) (*Engine, *fakeSaver, *fakeListener) {
	t.Helper()
	saver := &fakeSaver{}
	e := New(s, WithSaver(saver))
	l := &fakeListener{}
	e.Attach(l)
	return e, saver, l
}

func TestFeedAppliesSavesAndNotifies(t *testing.T) {
	e, saver, l := newEngine(t, pet.NewState())

	out, err := e.Feed(pet.Kibble)
	require.NoError(t, err)

	assert.Equal(t, 40.0, out.Snapshot.Vitals.Hunger)
	assert.Equal(t, 55.0, out.Snapshot.Vitals.Happiness)
	assert.Equal(t, 4, out.Snapshot.Food[pet.Kibble])
	assert.Equal(t, EffectFeed, out.Effect)
	assert.NotEmpty(t, out.ID)

	require.Equal(t, 1, saver.count())
	assert.Equal(t, out.Snapshot, saver.last())
	assert.Equal(t, []Effect{EffectFeed}, l.effects)
}

func TestFeedOutOfStockChangesNothing(t *testing.T) {
	s := pet.NewState()
	s.Food[pet.Fruit] = 0
	e, saver, l := newEngine(t, s)

	_, err := e.Feed(pet.Fruit)
	assert.ErrorIs(t, err, pet.ErrInsufficientStock)
	assert.Equal(t, 0, saver.count())
	assert.Empty(t, l.effects)
	assert.Equal(t, pet.DefaultVitals(), e.Snapshot().Vitals)
}

func TestAttachForcesCurrentMood(t *testing.T) {
	s := pet.NewState()
	s.Vitals.Hunger = 90
	e := New(s)
	l := &fakeListener{}
	e.Attach(l)

	assert.Equal(t, []moodCall{{conditions.MoodHungry, true}}, l.moods)
}

func TestTickReportsMoodChangeOnce(t *testing.T) {
	s := pet.NewState()
	s.Vitals.Hunger = 66
	e, _, l := newEngine(t, s)

	out := e.Tick()
	assert.Equal(t, 68.0, out.Snapshot.Vitals.Hunger)
	assert.False(t, out.MoodChanged)

	out = e.Tick()
	assert.Equal(t, conditions.MoodHungry, out.Mood)
	assert.True(t, out.MoodChanged)

	out = e.Tick()
	assert.False(t, out.MoodChanged)

	assert.Equal(t, []moodCall{
		{conditions.MoodIdle, true},
		{conditions.MoodHungry, false},
	}, l.moods)
	assert.Empty(t, l.effects)
}

func TestSnapshotDoesNotAlias(t *testing.T) {
	e := New(pet.NewState())
	snap := e.Snapshot()
	snap.Food[pet.Kibble] = 999
	snap.Vitals.Hunger = 0

	again := e.Snapshot()
	assert.Equal(t, 5, again.Food[pet.Kibble])
	assert.Equal(t, pet.DefaultVital, again.Vitals.Hunger)
}

func TestSelectAndTapUntilRanOut(t *testing.T) {
	e, _, l := newEngine(t, pet.NewState())
	fruit := pet.FoodItem(pet.Fruit)

	_, err := e.SelectAction(pet.ActionFeed, &fruit)
	require.NoError(t, err)
	snap := e.Snapshot()
	assert.Equal(t, pet.ActionFeed, snap.ActiveAction)
	require.NotNil(t, snap.SelectedFood)
	assert.Equal(t, pet.Fruit, *snap.SelectedFood)

	out, err := e.PerformActiveAction()
	require.NoError(t, err)
	assert.False(t, out.RanOut)
	assert.Equal(t, pet.ActionFeed, out.Snapshot.ActiveAction)

	out, err = e.PerformActiveAction()
	require.NoError(t, err)
	assert.True(t, out.RanOut)
	assert.Equal(t, 0, out.Snapshot.Food[pet.Fruit])
	assert.Equal(t, pet.ActionNone, out.Snapshot.ActiveAction)
	assert.Nil(t, out.Snapshot.SelectedFood)

	_, err = e.PerformActiveAction()
	assert.ErrorIs(t, err, ErrNoActiveAction)

	assert.Equal(t, []Effect{EffectFeed, EffectFeed}, l.effects)
}

func TestSelectRejectsEmptyOrMismatchedItem(t *testing.T) {
	s := pet.NewState()
	s.Toys[pet.Rope] = 0
	e, saver, _ := newEngine(t, s)

	rope := pet.ToyItem(pet.Rope)
	_, err := e.SelectAction(pet.ActionPlay, &rope)
	assert.ErrorIs(t, err, pet.ErrInsufficientStock)

	kibble := pet.FoodItem(pet.Kibble)
	_, err = e.SelectAction(pet.ActionPlay, &kibble)
	assert.ErrorIs(t, err, ErrItemRequired)

	_, err = e.SelectAction(pet.ActionFeed, nil)
	assert.ErrorIs(t, err, ErrItemRequired)

	assert.Equal(t, 0, saver.count())
	assert.Equal(t, pet.ActionNone, e.Snapshot().ActiveAction)
}

func TestCleanStaysSelectedSleepDoesNot(t *testing.T) {
	s := pet.NewState()
	s.Vitals.Cleanliness = 10
	e, _, _ := newEngine(t, s)

	_, err := e.SelectAction(pet.ActionClean, nil)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		out, err := e.PerformActiveAction()
		require.NoError(t, err)
		assert.Equal(t, EffectClean, out.Effect)
	}
	snap := e.Snapshot()
	assert.Equal(t, 70.0, snap.Vitals.Cleanliness)
	assert.Equal(t, pet.ActionClean, snap.ActiveAction)

	_, err = e.SelectAction(pet.ActionSleep, nil)
	require.NoError(t, err)
	out, err := e.PerformActiveAction()
	require.NoError(t, err)
	assert.Equal(t, EffectSleep, out.Effect)
	assert.Equal(t, pet.ActionNone, out.Snapshot.ActiveAction)
	assert.Equal(t, 20.0, out.Snapshot.Vitals.Sleepiness)
}

func TestSelectingReplacesPreviousSelection(t *testing.T) {
	e, _, _ := newEngine(t, pet.NewState())
	ball := pet.ToyItem(pet.Ball)
	treat := pet.FoodItem(pet.Treat)

	_, err := e.SelectAction(pet.ActionPlay, &ball)
	require.NoError(t, err)
	_, err = e.SelectAction(pet.ActionFeed, &treat)
	require.NoError(t, err)

	snap := e.Snapshot()
	assert.Nil(t, snap.SelectedToy)
	require.NotNil(t, snap.SelectedFood)
	assert.Equal(t, pet.Treat, *snap.SelectedFood)

	out := e.CancelAction()
	assert.Equal(t, pet.ActionNone, out.Snapshot.ActiveAction)
	assert.Nil(t, out.Snapshot.SelectedFood)
}

func TestTapWithStaleSelectionClearsIt(t *testing.T) {
	s := pet.NewState()
	s.Food[pet.Treat] = 0
	treat := pet.Treat
	s.ActiveAction = pet.ActionFeed
	s.SelectedFood = &treat
	e, saver, _ := newEngine(t, s)

	out, err := e.PerformActiveAction()
	assert.ErrorIs(t, err, pet.ErrInsufficientStock)
	assert.True(t, out.RanOut)
	assert.Equal(t, pet.ActionNone, e.Snapshot().ActiveAction)
	assert.Equal(t, 1, saver.count())
}

func TestFeedingLastSelectedItemClearsSelection(t *testing.T) {
	s := pet.NewState()
	s.Food[pet.Kibble] = 2
	e, _, _ := newEngine(t, s)
	kibble := pet.FoodItem(pet.Kibble)

	_, err := e.SelectAction(pet.ActionFeed, &kibble)
	require.NoError(t, err)

	out, err := e.Feed(pet.Kibble)
	require.NoError(t, err)
	assert.False(t, out.RanOut)
	assert.Equal(t, pet.ActionFeed, out.Snapshot.ActiveAction)

	out, err = e.Feed(pet.Kibble)
	require.NoError(t, err)
	assert.True(t, out.RanOut)
	assert.Equal(t, 0, out.Snapshot.Food[pet.Kibble])
	assert.Equal(t, pet.ActionNone, out.Snapshot.ActiveAction)
	assert.Nil(t, out.Snapshot.SelectedFood)

	// Using up an item that isn't selected leaves the selection alone.
	s = pet.NewState()
	s.Toys[pet.Rope] = 1
	s.Toys[pet.Ball] = 1
	e, _, _ = newEngine(t, s)
	ball := pet.ToyItem(pet.Ball)
	_, err = e.SelectAction(pet.ActionPlay, &ball)
	require.NoError(t, err)

	out, err = e.Play(pet.Rope)
	require.NoError(t, err)
	assert.False(t, out.RanOut)
	assert.Equal(t, pet.ActionPlay, out.Snapshot.ActiveAction)
	require.NotNil(t, out.Snapshot.SelectedToy)
	assert.Equal(t, pet.Ball, *out.Snapshot.SelectedToy)

	out, err = e.Play(pet.Ball)
	require.NoError(t, err)
	assert.True(t, out.RanOut)
	assert.Nil(t, out.Snapshot.SelectedToy)
}

func TestIngestActivityEvolves(t *testing.T) {
	e, _, _ := newEngine(t, pet.NewState())

	out := e.IngestActivity(pet.Reading{RunningMeters: 1200, SleepHours: 7})
	assert.True(t, out.Evolved)
	assert.Equal(t, pet.StageEgg, out.From)
	assert.Equal(t, pet.StageHatchling, out.To)
	assert.Equal(t, 12+35, out.PointsAwarded)
	assert.Equal(t, pet.DefaultPoints+47, out.Snapshot.Points)
	assert.Equal(t, 7.0, out.Snapshot.Activity.LastSleepHours)

	out = e.IngestActivity(pet.Reading{})
	assert.False(t, out.Evolved)
	assert.Equal(t, pet.StageHatchling, out.Snapshot.Stage)
}

func TestBuyFromCatalogUsesConfiguredPrices(t *testing.T) {
	catalog := pet.DefaultCatalog().Merge(pet.Catalog{Food: map[pet.FoodKind]int{pet.Kibble: 7}})
	e := New(pet.NewState(), WithCatalog(catalog))

	out, err := e.BuyFromCatalog(pet.FoodItem(pet.Kibble), 10)
	require.NoError(t, err)
	assert.Equal(t, 70, out.PointsSpent)
	assert.Equal(t, pet.DefaultPoints-70, out.Snapshot.Points)
	assert.Equal(t, 15, out.Snapshot.Food[pet.Kibble])

	_, err = e.BuyFromCatalog(pet.FoodItem(pet.Kibble), 100)
	assert.ErrorIs(t, err, pet.ErrInsufficientFunds)
	assert.Equal(t, pet.DefaultPoints-70, e.Snapshot().Points)
}

func TestBuyAtExplicitPrice(t *testing.T) {
	e := New(pet.NewState())

	_, err := e.Buy(pet.ToyItem(pet.Ball), 0, 10)
	assert.ErrorIs(t, err, pet.ErrInvalidPurchase)

	out, err := e.Buy(pet.ToyItem(pet.Ball), 3, 25)
	require.NoError(t, err)
	assert.Equal(t, 75, out.PointsSpent)
	assert.Equal(t, 8, out.Snapshot.Toys[pet.Ball])
}

func TestRename(t *testing.T) {
	e := New(pet.NewState())

	_, err := e.Rename("   ")
	assert.ErrorIs(t, err, pet.ErrInvalidName)

	out, err := e.Rename("  Pip ")
	require.NoError(t, err)
	assert.Equal(t, "Pip", out.Snapshot.Name)
}

func TestResetsThroughEngine(t *testing.T) {
	e := New(pet.NewState())
	_, err := e.Rename("Pip")
	require.NoError(t, err)
	_, err = e.Feed(pet.Treat)
	require.NoError(t, err)
	e.IngestActivity(pet.Reading{RunningMeters: 2000})

	soft := e.SoftReset().Snapshot
	assert.Equal(t, pet.DefaultName, soft.Name)
	assert.Equal(t, pet.DefaultVitals(), soft.Vitals)
	assert.Equal(t, 2, soft.Food[pet.Treat])
	assert.Equal(t, pet.StageHatchling, soft.Stage)

	_, err = e.Feed(pet.Kibble)
	require.NoError(t, err)
	hard := e.HardReset().Snapshot
	assert.Equal(t, pet.DefaultPoints, hard.Points)
	assert.Equal(t, pet.DefaultFood(), hard.Food)
	assert.Equal(t, pet.StageEgg, hard.Stage)
	assert.Equal(t, 40.0, hard.Vitals.Hunger)
}

func TestConcurrentActionsStayInRange(t *testing.T) {
	s := pet.NewState()
	s.Food[pet.Kibble] = 200
	s.Toys[pet.Ball] = 200
	e, saver, _ := newEngine(t, s)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				switch (i + j) % 4 {
				case 0:
					_, _ = e.Feed(pet.Kibble)
				case 1:
					_, _ = e.Play(pet.Ball)
				case 2:
					e.Tick()
				default:
					e.Clean()
				}
			}
		}(i)
	}
	wg.Wait()

	snap := e.Snapshot()
	assert.Equal(t, 400, saver.count())
	assert.Equal(t, 100, snap.Food[pet.Kibble])
	assert.Equal(t, 100, snap.Toys[pet.Ball])
	for _, v := range []float64{snap.Vitals.Hunger, snap.Vitals.Happiness, snap.Vitals.Cleanliness, snap.Vitals.Sleepiness} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestTickerRunsUntilCancelled(t *testing.T) {
	saver := &fakeSaver{}
	e := New(pet.NewState(), WithSaver(saver))
	tk := NewTicker(e, 2*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tk.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return tk.Ticks() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ticker did not stop")
	}
	assert.Equal(t, int(tk.Ticks()), saver.count())
	assert.Greater(t, e.Snapshot().Vitals.Hunger, pet.DefaultVital)
}

func TestTickerStopIsIdempotent(t *testing.T) {
	tk := NewTicker(New(pet.NewState()), time.Hour, nil)
	done := make(chan struct{})
	go func() {
		tk.Run(context.Background())
		close(done)
	}()

	tk.Stop()
	tk.Stop()
	<-done
	assert.Equal(t, int64(0), tk.Ticks())
}
