// Package deck builds the two complementary decks dealt at room creation.
package deck

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"

	"github.com/ines1102/SeriousGame-sub000/internal/game/card"
)

// ErrInvalidDeckConfig 牌组参数不合法
var ErrInvalidDeckConfig = errors.New("invalid deck configuration")

// Options 牌组构成参数
type Options struct {
	DeckSize            int // 每人牌数（含手牌）
	HandSize            int // 起手牌数
	Diseases            int // 玩家 1 的基础疾病数（互不相同）
	Bonuses             int // 玩家 1 的 bonus 数
	Maluses             int // 玩家 1 的 malus 数
	Supporters          int // 玩家 1 的 supporter 数
	MaxDistinctAttempts int // 连续抽到重复疾病多少次后允许重复
}

// DefaultOptions 默认 25 张牌、5 张手牌、7 种疾病
func DefaultOptions() Options {
	return Options{
		DeckSize:            25,
		HandSize:            5,
		Diseases:            7,
		Bonuses:             3,
		Maluses:             3,
		Supporters:          5,
		MaxDistinctAttempts: 64,
	}
}

// Validate 校验参数
func (o Options) Validate() error {
	switch {
	case o.DeckSize <= 0:
		return fmt.Errorf("%w: deck size must be positive", ErrInvalidDeckConfig)
	case o.HandSize < 0 || o.HandSize > o.DeckSize:
		return fmt.Errorf("%w: hand size %d outside [0,%d]", ErrInvalidDeckConfig, o.HandSize, o.DeckSize)
	case o.Diseases < 0 || o.Bonuses < 0 || o.Maluses < 0 || o.Supporters < 0:
		return fmt.Errorf("%w: negative card count", ErrInvalidDeckConfig)
	case o.Diseases+o.Bonuses+o.Maluses+o.Supporters > o.DeckSize:
		return fmt.Errorf("%w: %d base cards exceed deck size %d", ErrInvalidDeckConfig,
			o.Diseases+o.Bonuses+o.Maluses+o.Supporters, o.DeckSize)
	case o.MaxDistinctAttempts <= 0:
		return fmt.Errorf("%w: max distinct attempts must be positive", ErrInvalidDeckConfig)
	}
	return nil
}

// PlayerDeck 一名玩家的牌堆和手牌
type PlayerDeck struct {
	OwnerSlot int
	DrawPile  []card.Card
	Hand      []card.Card
}

// Size 牌堆 + 手牌
func (d *PlayerDeck) Size() int {
	return len(d.DrawPile) + len(d.Hand)
}

// Draw 从牌堆顶摸一张牌到手牌
func (d *PlayerDeck) Draw() (card.Card, bool) {
	if len(d.DrawPile) == 0 {
		return card.Card{}, false
	}
	c := d.DrawPile[0]
	d.DrawPile = d.DrawPile[1:]
	d.Hand = append(d.Hand, c)
	return c, true
}

// TakeFromHand 按 ID 从手牌移除一张牌
func (d *PlayerDeck) TakeFromHand(id string) (card.Card, bool) {
	for i, c := range d.Hand {
		if c.ID == id {
			d.Hand = append(d.Hand[:i], d.Hand[i+1:]...)
			return c, true
		}
	}
	return card.Card{}, false
}

// MatchDecks 一局的两副牌
type MatchDecks struct {
	Player1 PlayerDeck // 疾病方（slot 0）
	Player2 PlayerDeck // 药方（slot 1）

	// Diseases 玩家 1 的全部疾病图片，按抽取顺序
	Diseases []string
}

// Builder 牌组生成器
type Builder struct {
	catalog *card.Catalog
	opts    Options

	mu  sync.Mutex // rand.Rand 不是并发安全的
	rng *rand.Rand
}

// NewBuilder 创建生成器，rng 为 nil 时使用随机种子
func NewBuilder(catalog *card.Catalog, opts Options, rng *rand.Rand) (*Builder, error) {
	if catalog == nil {
		return nil, errors.New("deck builder requires a card catalog")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Builder{catalog: catalog, opts: opts, rng: rng}, nil
}

// BuildMatchDecks 生成两副互补的牌并发起手牌
func (b *Builder) BuildMatchDecks() (*MatchDecks, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.catalog
	chosen := make(map[string]bool, b.opts.DeckSize)
	p1 := make([]card.Card, 0, b.opts.DeckSize)
	p2 := make([]card.Card, 0, b.opts.DeckSize)
	var diseases []string

	addDisease := func() error {
		tpl, err := b.drawDistinctDisease(chosen)
		if err != nil {
			return err
		}
		remedy, ok := c.RemedyFor(tpl.Image)
		if !ok {
			return fmt.Errorf("no remedy for disease %s", tpl.Image)
		}
		chosen[tpl.Image] = true
		diseases = append(diseases, tpl.Image)
		p1 = append(p1, tpl.Instantiate())
		p2 = append(p2, remedy.Instantiate())
		return nil
	}

	// 基础疾病，每种疾病的药进入玩家 2 的牌堆
	for range b.opts.Diseases {
		if err := addDisease(); err != nil {
			return nil, err
		}
	}

	// 玩家 1 的填充牌
	fillers := []struct {
		pool  *card.Pool
		count int
	}{
		{&c.Bonuses, b.opts.Bonuses},
		{&c.Maluses, b.opts.Maluses},
		{&c.Supporters, b.opts.Supporters},
	}
	for _, f := range fillers {
		for range f.count {
			drawn, err := f.pool.Draw(b.rng)
			if err != nil {
				return nil, fmt.Errorf("draw from %s: %w", f.pool.Name, err)
			}
			p1 = append(p1, drawn)
		}
	}

	// 补满玩家 1：追加不重复的疾病
	for len(p1) < b.opts.DeckSize {
		if err := addDisease(); err != nil {
			return nil, err
		}
	}

	// 补满玩家 2：bonus → malus → supporter 循环
	cycle := []*card.Pool{&c.Bonuses, &c.Maluses, &c.Supporters}
	for i := 0; len(p2) < b.opts.DeckSize; i++ {
		pool := cycle[i%len(cycle)]
		drawn, err := pool.Draw(b.rng)
		if err != nil {
			return nil, fmt.Errorf("draw from %s: %w", pool.Name, err)
		}
		p2 = append(p2, drawn)
	}

	b.shuffle(p1)
	b.shuffle(p2)

	return &MatchDecks{
		Player1:  b.deal(0, p1),
		Player2:  b.deal(1, p2),
		Diseases: diseases,
	}, nil
}

// drawDistinctDisease 抽一种尚未选中的疾病
// 连续 MaxDistinctAttempts 次都重复时接受重复，避免卡池过小时死循环
func (b *Builder) drawDistinctDisease(chosen map[string]bool) (card.Template, error) {
	for attempt := 1; ; attempt++ {
		tpl, err := b.catalog.Diseases.DrawTemplate(b.rng)
		if err != nil {
			return card.Template{}, fmt.Errorf("draw disease: %w", err)
		}
		if !chosen[tpl.Image] {
			return tpl, nil
		}
		if attempt >= b.opts.MaxDistinctAttempts {
			log.Printf("⚠️ 疾病卡池可选种类不足，%d 次后允许重复: %s", attempt, tpl.Image)
			return tpl, nil
		}
	}
}

// shuffle Fisher-Yates 洗牌
func (b *Builder) shuffle(cards []card.Card) {
	b.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// deal 前 HandSize 张为手牌，其余为牌堆
func (b *Builder) deal(slot int, cards []card.Card) PlayerDeck {
	hand := make([]card.Card, b.opts.HandSize)
	copy(hand, cards[:b.opts.HandSize])
	pile := make([]card.Card, len(cards)-b.opts.HandSize)
	copy(pile, cards[b.opts.HandSize:])
	return PlayerDeck{OwnerSlot: slot, DrawPile: pile, Hand: hand}
}
