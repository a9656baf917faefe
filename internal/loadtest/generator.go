package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Score status mix of generated results, in percent.
const (
	percentDNF     = 4
	percentCap     = 6
	percentMissing = 5
)

var (
	firstNames = []string{"Ana", "Ben", "Cara", "Dev", "Eli", "Fay", "Gus", "Hana", "Ivo", "Jade", "Kai", "Lena"}
	lastNames  = []string{"Silva", "Ortiz", "Lee", "Nakamura", "Okafor", "Berg", "Novak", "Haddad", "Rossi", "Kim"}
	workouts   = []string{"Fran", "Grace", "Helen", "Diane", "Elizabeth", "Isabel", "Jackie", "Karen", "Nancy", "Annie"}
	multiplier = []int{100, 100, 50, 150}
)

// Generate builds a synthetic competition. The same config always yields the
// same fixture.
func Generate(cfg GenerateConfig) repository.CompetitionFixture {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)) //nolint:gosec // synthetic data

	id := cfg.CompetitionID
	if id == "" {
		id = "load-" + strconv.FormatUint(cfg.Seed, 10)
	}
	name := cfg.Name
	if name == "" {
		name = "Load Test " + strconv.FormatUint(cfg.Seed, 10)
	}

	track := &repository.TrackFixture{ID: id + "-track"}
	for e := 0; e < cfg.Events; e++ {
		m := multiplier[e%len(multiplier)]
		track.Events = append(track.Events, repository.EventFixture{
			ID:               fmt.Sprintf("%s-ev-%d", id, e+1),
			Name:             workouts[e%len(workouts)],
			TrackOrder:       e + 1,
			PointsMultiplier: &m,
			Scheme:           "time",
			Status:           model.EventStatusPublished,
		})
	}

	fx := repository.CompetitionFixture{ID: id, Name: name, Slug: id, Track: track}
	for a := 0; a < cfg.Athletes; a++ {
		userID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(id+"/athlete/"+strconv.Itoa(a))).String()
		reg := repository.RegistrationFixture{
			ID:        fmt.Sprintf("%s-reg-%d", id, a),
			UserID:    userID,
			FirstName: firstNames[rng.IntN(len(firstNames))],
			LastName:  lastNames[rng.IntN(len(lastNames))],
			Status:    "ACTIVE",
			Metadata:  affiliateMetadata(rng, cfg.Gyms),
		}
		if cfg.Divisions > 0 {
			d := rng.IntN(cfg.Divisions) + 1
			div := "div-" + strconv.Itoa(d)
			reg.DivisionID = &div
			reg.DivisionLabel = "Division " + strconv.Itoa(d)
		}
		fx.Registrations = append(fx.Registrations, reg)

		for _, ev := range track.Events {
			if sc, ok := generateScore(rng, userID, ev.ID); ok {
				fx.Scores = append(fx.Scores, sc)
			}
		}
	}
	return fx
}

// affiliateMetadata alternates between both metadata shapes and leaves some
// athletes unaffiliated.
func affiliateMetadata(rng *rand.Rand, gyms int) string {
	if gyms <= 0 || rng.IntN(10) == 0 {
		return ""
	}
	gym := "Gym " + strconv.Itoa(rng.IntN(gyms)+1)
	if rng.IntN(2) == 0 {
		return fmt.Sprintf(`{"affiliateName":%q}`, gym)
	}
	return fmt.Sprintf(`{"affiliates":{"%d":%q}}`, rng.IntN(1000), gym)
}

func generateScore(rng *rand.Rand, userID, eventID string) (repository.ScoreFixture, bool) {
	roll := rng.IntN(100)
	switch {
	case roll < percentMissing:
		return repository.ScoreFixture{}, false
	case roll < percentMissing+percentDNF:
		return repository.ScoreFixture{UserID: userID, EventID: eventID, Status: model.ScoreStatusDNF}, true
	}

	// Times between 2 and 20 minutes, in seconds with two decimals.
	value := math.Round((120+rng.Float64()*1080)*100) / 100
	status := model.ScoreStatusScored
	if roll < percentMissing+percentDNF+percentCap {
		status = model.ScoreStatusCap
		value += 1200
	}
	return repository.ScoreFixture{UserID: userID, EventID: eventID, Value: &value, Status: status}, true
}

// SaveFixture writes competitions as a fixture file MemoryStore can load.
func SaveFixture(ctx context.Context, path string, competitions ...repository.CompetitionFixture) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(repository.Fixture{Competitions: competitions}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("failed to write fixture: %w", err)
	}

	logger.Get().Info(ctx, "fixture saved",
		logger.String("path", path),
		logger.Int("competitions", len(competitions)),
	)
	return nil
}
