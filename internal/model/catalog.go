package model

import (
	"errors"
	"fmt"
)

var ErrUnknownStation = errors.New("泵站不属于所选区域")

// Catalog 区域 → 泵站目录
// 每个泵站恰好属于一个区域，名称按 NormalizeName 比较
type Catalog struct {
	zones    []Zone
	stations map[Zone][]string
	index    map[string]Zone   // normalized name → zone
	names    map[string]string // normalized name → canonical name
}

// NewCatalog 构建目录；同一泵站出现在多个区域时报错
func NewCatalog(entries map[Zone][]string) (*Catalog, error) {
	c := &Catalog{
		stations: make(map[Zone][]string, len(entries)),
		index:    make(map[string]Zone),
		names:    make(map[string]string),
	}
	for _, z := range AllZones {
		list, ok := entries[z]
		if !ok {
			continue
		}
		c.zones = append(c.zones, z)
		for _, name := range list {
			key := NormalizeName(name)
			if key == "" {
				return nil, fmt.Errorf("区域 %s 含空泵站名", z)
			}
			if prev, dup := c.index[key]; dup {
				return nil, fmt.Errorf("泵站 %q 同时属于 %s 与 %s", name, prev, z)
			}
			c.index[key] = z
			c.names[key] = name
			c.stations[z] = append(c.stations[z], name)
		}
	}
	for z := range entries {
		if _, ok := c.stations[z]; !ok && len(entries[z]) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownZone, z)
		}
	}
	return c, nil
}

// Zones 目录中的区域（固定展示顺序）
func (c *Catalog) Zones() []Zone {
	out := make([]Zone, len(c.zones))
	copy(out, c.zones)
	return out
}

// Stations 某区域的泵站列表（目录顺序）
func (c *Catalog) Stations(z Zone) []string {
	out := make([]string, len(c.stations[z]))
	copy(out, c.stations[z])
	return out
}

// Lookup 按名称查找规范名与所属区域
func (c *Catalog) Lookup(station string) (string, Zone, bool) {
	key := NormalizeName(station)
	z, ok := c.index[key]
	if !ok {
		return "", "", false
	}
	return c.names[key], z, true
}

// Resolve 校验泵站属于该区域并返回规范名称
func (c *Catalog) Resolve(z Zone, station string) (string, error) {
	key := NormalizeName(station)
	owner, ok := c.index[key]
	if !ok || owner != z {
		return "", fmt.Errorf("%w: %s / %q", ErrUnknownStation, z, station)
	}
	return c.names[key], nil
}

// DefaultCatalog 内置泵站目录
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultStations)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultStations = map[Zone][]string{
	ZoneWZ:  {"Ranip", "Chenpur", "Motera", "Keshavnagar", "Sharda", "Paldi Shantivan"},
	ZoneEZ:  {"Rakhiyal", "Viratnagar", "Ambikanagar", "Rabari Vasahat", "Arbuda Nagar"},
	ZoneSZ:  {"Maninagar", "Vatva Nigam", "Isanpur-2"},
	ZoneNZ:  {"Naroda Gayatri", "Ambawadi"},
	ZoneCZ:  {"Shahibag", "Dariyapur", "Mirzapur"},
	ZoneSWZ: {"Juhapura", "Vejalpur"},
	ZoneNWZ: {"Ghuma", "Vasantnagar Gota"},
	ZoneSR:  {"W-5"},
	ZoneTSPS: {
		"Jamalpur", "106 MLD", "NSP", "Danilimda", "Ambedkar", "180 MLD Pirana",
		"Pirana terminal", "Saijpur 7", "Maleksaban 30", "Kotarpur 60",
		"100 MLD Vinzol", "102 MLD Vinzol", "Lambha 17.50MLD", "SRFDCL E3",
		"Dafnala 25", "SRFDCL V.Baraj", "Vasna Auda 126 mld", "285 MLD Vasna",
		"Vasna 76 mld", "Jalvihar 60",
	},
	ZonePlant: {
		"Old Pirana-106 MLD", "Old Pirana- 60 MLD", "New Pirana-180 MLD",
		"New Pirana-155 MLD", "Saijpur-7 MLD", "Maleksaban-30 MLD",
		"Kotarpur-60 MLD", "Vinzol-100 MLD", "Vinzol-70 MLD", "Vinzol-35 MLD",
		"Lambha-5 MLD", "Shankarbhuvan-25 MLD", "Dafnala-25 MLD", "Vasna-35 MLD",
		"Vasna-126 MLD", "Vasna-240 MLD", "Vasna-48 MLD", "Jalvihar-60 MLD",
	},
}
