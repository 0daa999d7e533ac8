package card

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog 五个卡池，所有房间共享只读
type Catalog struct {
	Diseases   Pool
	Remedies   Pool
	Bonuses    Pool
	Maluses    Pool
	Supporters Pool

	remedyFor map[string]Template // 疾病图片路径 -> 对应的药
}

// catalogFile YAML 文件结构
type catalogFile struct {
	Diseases   []Template `yaml:"diseases"`
	Remedies   []Template `yaml:"remedies"`
	Bonuses    []Template `yaml:"bonuses"`
	Maluses    []Template `yaml:"maluses"`
	Supporters []Template `yaml:"supporters"`
}

// DefaultCatalog 返回内置卡牌目录
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog 从文件加载目录，path 为空时使用内置目录
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog 解析并校验 YAML 目录
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse card catalog: %w", err)
	}

	c := &Catalog{
		Diseases:   newPool("diseases", Disease, f.Diseases),
		Remedies:   newPool("remedies", Remedy, f.Remedies),
		Bonuses:    newPool("bonuses", Bonus, f.Bonuses),
		Maluses:    newPool("maluses", Malus, f.Maluses),
		Supporters: newPool("supporters", Supporter, f.Supporters),
		remedyFor:  make(map[string]Template, len(f.Remedies)),
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func newPool(name string, kind Kind, templates []Template) Pool {
	for i := range templates {
		templates[i].Kind = kind
	}
	return Pool{Name: name, Templates: templates}
}

// validate 图片路径全局唯一；疾病与药一一对应；各卡池可抽
func (c *Catalog) validate() error {
	seen := make(map[string]string)
	for _, p := range c.pools() {
		if p.TotalWeight() <= 0 {
			return fmt.Errorf("%w: %s", ErrEmptyPool, p.Name)
		}
		for _, t := range p.Templates {
			if t.Image == "" {
				return fmt.Errorf("pool %s: template without image", p.Name)
			}
			if other, dup := seen[t.Image]; dup {
				return fmt.Errorf("image %s listed in both %s and %s", t.Image, other, p.Name)
			}
			seen[t.Image] = p.Name
		}
	}

	diseases := make(map[string]bool, len(c.Diseases.Templates))
	for _, d := range c.Diseases.Templates {
		diseases[d.Image] = true
	}

	for _, r := range c.Remedies.Templates {
		if !diseases[r.Cures] {
			return fmt.Errorf("remedy %s cures unknown disease %q", r.Image, r.Cures)
		}
		if prev, dup := c.remedyFor[r.Cures]; dup {
			return fmt.Errorf("disease %s has two remedies: %s and %s", r.Cures, prev.Image, r.Image)
		}
		c.remedyFor[r.Cures] = r
	}

	for image := range diseases {
		if _, ok := c.remedyFor[image]; !ok {
			return fmt.Errorf("disease %s has no remedy", image)
		}
	}
	return nil
}

func (c *Catalog) pools() []*Pool {
	return []*Pool{&c.Diseases, &c.Remedies, &c.Bonuses, &c.Maluses, &c.Supporters}
}

// RemedyFor 查找治疗指定疾病的药
func (c *Catalog) RemedyFor(diseaseImage string) (Template, bool) {
	t, ok := c.remedyFor[diseaseImage]
	return t, ok
}
