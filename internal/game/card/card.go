package card

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind 卡牌种类
type Kind string

const (
	Disease   Kind = "disease"
	Remedy    Kind = "remedy"
	Bonus     Kind = "bonus"
	Malus     Kind = "malus"
	Supporter Kind = "supporter"
)

// kindNames 种类显示名
var kindNames = map[Kind]string{
	Disease:   "Maladie",
	Remedy:    "Remède",
	Bonus:     "Bonus",
	Malus:     "Malus",
	Supporter: "Soutien",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return string(k)
}

// Valid 是否为已知种类
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind 解析种类字符串
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown card kind: %q", s)
	}
	return k, nil
}

// Template 卡牌模板（目录中的条目，无 ID）
type Template struct {
	Image  string `yaml:"image"`
	Rarity int    `yaml:"rarity"`
	Kind   Kind   `yaml:"-"`
	Cures  string `yaml:"cures,omitempty"` // 仅 remedy：对应疾病的图片路径
}

// Card 一张已抽出的牌
// 同一模板可多次出现，靠 ID 区分
type Card struct {
	ID     string
	Image  string
	Rarity int
	Kind   Kind
}

// Instantiate 以新的唯一 ID 实例化模板
func (t Template) Instantiate() Card {
	return Card{
		ID:     uuid.NewString(),
		Image:  t.Image,
		Rarity: t.Rarity,
		Kind:   t.Kind,
	}
}

func (c Card) String() string {
	return fmt.Sprintf("%s(%s)", c.Kind, c.Image)
}
