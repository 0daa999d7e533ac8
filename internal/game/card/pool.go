package card

import (
	"errors"
	"math/rand/v2"
)

// ErrEmptyPool 卡池为空或总权重为 0
var ErrEmptyPool = errors.New("card pool is empty")

// Pool 带权重的卡池，进程启动后只读
type Pool struct {
	Name      string
	Templates []Template
}

// TotalWeight 总权重（负权重按 0 计）
func (p *Pool) TotalWeight() int {
	total := 0
	for _, t := range p.Templates {
		if t.Rarity > 0 {
			total += t.Rarity
		}
	}
	return total
}

// DrawTemplate 按权重抽取一个模板
// 在 [0, total) 内均匀取值，逐项累加权重，取值落入的那一项被选中
func (p *Pool) DrawTemplate(r *rand.Rand) (Template, error) {
	total := p.TotalWeight()
	if total <= 0 {
		return Template{}, ErrEmptyPool
	}

	roll := r.IntN(total)
	current := 0
	for _, t := range p.Templates {
		if t.Rarity <= 0 {
			continue
		}
		current += t.Rarity
		if roll < current {
			return t, nil
		}
	}

	// unreachable while total > 0
	return Template{}, ErrEmptyPool
}

// Draw 按权重抽取并实例化一张牌
func (p *Pool) Draw(r *rand.Rand) (Card, error) {
	t, err := p.DrawTemplate(r)
	if err != nil {
		return Card{}, err
	}
	return t.Instantiate(), nil
}

// Distinct 不同图片的模板数量
func (p *Pool) Distinct() int {
	seen := make(map[string]struct{}, len(p.Templates))
	for _, t := range p.Templates {
		if t.Rarity > 0 {
			seen[t.Image] = struct{}{}
		}
	}
	return len(seen)
}
