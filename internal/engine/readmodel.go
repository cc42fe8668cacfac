package engine

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"groupbuy-service/internal/model"
	"groupbuy-service/internal/normalize"
	"groupbuy-service/internal/phase"
)

// ProductView is one storefront card.
type ProductView struct {
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	OrigPrice    float64  `json:"origPrice"`
	MOQ          int      `json:"moq"`
	Img          string   `json:"img"`
	Description  string   `json:"description"`
	Link         string   `json:"link"`
	EndDate      string   `json:"endDate"`
	CurrentQty   int      `json:"currentQty"`
	Voters       []Voter  `json:"voters"`
	BuyerAvatars []string `json:"buyerAvatars"`
	IsEnabled    bool     `json:"isEnabled"`
	WaveID       string   `json:"waveId"`
}

// WaveView groups the products of one wave that share a phase. A wave can
// appear twice, once collecting and once active, with disjoint product sets.
type WaveView struct {
	Wave     string        `json:"wave"`
	Phase    phase.Phase   `json:"phase"`
	Products []ProductView `json:"products"`
}

// StorefrontView is the full read model for one leader's storefront.
type StorefrontView struct {
	Success      bool       `json:"success"`
	LeaderID     string     `json:"leaderId"`
	LeaderName   string     `json:"leaderName"`
	LeaderAvatar string     `json:"leaderAvatar"`
	IsLeader     bool       `json:"isLeader"`
	ActiveWaves  []WaveView `json:"activeWaves"`
}

// ReadModelAssembler composes the phase, ledger, and enablement components
// into the wave/product view returned to clients. It holds no state of its
// own; every call re-reads the record store.
type ReadModelAssembler struct {
	db     *gorm.DB
	ledger *IntentLedger
}

func NewReadModelAssembler(db *gorm.DB) *ReadModelAssembler {
	return &ReadModelAssembler{db: db, ledger: NewIntentLedger(db)}
}

// Storefront builds the view for one leader. The three backing table scans
// are independent and run concurrently; any scan error fails the whole read.
func (a *ReadModelAssembler) Storefront(ctx context.Context, leaderID, userID string) (*StorefrontView, error) {
	if a.db == nil {
		return nil, configError("record store not initialized")
	}
	now := time.Now()

	var (
		products []model.Product
		intents  []model.Intent
		bindings []model.LeaderBinding
		profile  *model.LeaderProfile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.db.WithContext(gctx).Order("場次, id").Find(&products).Error; err != nil {
			return storeError("failed to scan products", err)
		}
		return nil
	})
	g.Go(func() error {
		rows, err := a.ledger.rows(gctx, leaderID)
		if err != nil {
			return err
		}
		intents = rows
		return nil
	})
	g.Go(func() error {
		if err := a.db.WithContext(gctx).
			Where("團長 = ?", leaderID).
			Find(&bindings).Error; err != nil {
			return storeError("failed to scan leader bindings", err)
		}
		var p model.LeaderProfile
		err := a.db.WithContext(gctx).Where("團長代號 = ?", leaderID).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return storeError("failed to load leader profile", err)
		}
		profile = &p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// bucket products by (wave, phase), dropping closed ones entirely
	type bucket struct {
		wave     string
		ph       phase.Phase
		products []model.Product
	}
	var order []*bucket
	index := make(map[[2]string]*bucket)
	openWaves := make(map[string]bool)
	for _, p := range products {
		sched := phase.Schedule{
			SelectStart: p.SelectStart,
			SelectEnd:   p.SelectEnd,
			SaleStart:   p.SaleStart,
			SaleEnd:     p.SaleEnd,
		}
		ph := phase.Resolve(sched, now)
		if ph == phase.Closed {
			continue
		}
		openWaves[p.Wave] = true
		key := [2]string{p.Wave, string(ph)}
		b := index[key]
		if b == nil {
			b = &bucket{wave: p.Wave, ph: ph}
			index[key] = b
			order = append(order, b)
		}
		b.products = append(b.products, p)
	}

	demand := foldIntents(intents, openWaves)

	// duplicate-tolerant binding per wave
	byWave := make(map[string][]model.LeaderBinding)
	for _, b := range bindings {
		byWave[b.Wave] = append(byWave[b.Wave], b)
	}
	enabledByWave := make(map[string]map[string]bool)
	for wave, rows := range byWave {
		enabledByWave[wave] = enabledNames(pickBinding(rows))
	}

	view := &StorefrontView{
		Success:     true,
		LeaderID:    leaderID,
		ActiveWaves: []WaveView{},
	}
	if profile != nil {
		view.LeaderName = profile.Name
		view.LeaderAvatar = profile.Avatar
		view.IsLeader = userID != "" && profile.ExternalID == userID
	}
	if view.LeaderName == "" {
		// fall back to the name recorded on a binding row
		if b := pickBinding(bindings); b != nil {
			view.LeaderName = b.LeaderName
		}
	}

	for _, b := range order {
		wv := WaveView{Wave: b.wave, Phase: b.ph, Products: []ProductView{}}
		for _, p := range b.products {
			name := normalize.Name(p.Name)
			sched := phase.Schedule{
				SelectStart: p.SelectStart,
				SelectEnd:   p.SelectEnd,
				SaleStart:   p.SaleStart,
				SaleEnd:     p.SaleEnd,
			}
			pv := ProductView{
				Name:         p.Name,
				Price:        p.Price,
				OrigPrice:    p.OrigPrice,
				MOQ:          p.MOQ,
				Img:          p.Img,
				Description:  p.Description,
				Link:         p.Link,
				EndDate:      phase.EndLabel(sched, b.ph),
				Voters:       []Voter{},
				BuyerAvatars: []string{},
				IsEnabled:    enabledByWave[p.Wave][name],
				WaveID:       p.Wave,
			}
			if d := demand[name]; d != nil {
				pv.CurrentQty = d.Total
				pv.Voters = d.Voters
				pv.BuyerAvatars = d.Avatars
			}
			wv.Products = append(wv.Products, pv)
		}
		view.ActiveWaves = append(view.ActiveWaves, wv)
	}
	return view, nil
}
