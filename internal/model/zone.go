package model

import (
	"errors"
	"fmt"
	"strings"
)

// Zone 区域代码
type Zone string

const (
	ZoneWZ    Zone = "WZ"
	ZoneEZ    Zone = "EZ"
	ZoneSZ    Zone = "SZ"
	ZoneNZ    Zone = "NZ"
	ZoneCZ    Zone = "CZ"
	ZoneSWZ   Zone = "SWZ"
	ZoneNWZ   Zone = "NWZ"
	ZoneSR    Zone = "SR"
	ZoneTSPS  Zone = "TSPS"
	ZonePlant Zone = "Plant"
)

// ZoneGroup 区域分组：普通泵站 / 转输泵站 / 处理厂，三者互不相交
type ZoneGroup string

const (
	GroupStandard ZoneGroup = "standard"
	GroupTSPS     ZoneGroup = "tsps"
	GroupPlant    ZoneGroup = "plant"
)

// AllZones 全部区域（固定展示顺序）
var AllZones = []Zone{ZoneWZ, ZoneEZ, ZoneSZ, ZoneNZ, ZoneCZ, ZoneSWZ, ZoneNWZ, ZoneSR, ZoneTSPS, ZonePlant}

// StandardZones 普通泵站区域，按区域汇总表始终为每个区域输出一行
var StandardZones = []Zone{ZoneWZ, ZoneEZ, ZoneSZ, ZoneNZ, ZoneCZ, ZoneSWZ, ZoneNWZ, ZoneSR}

var ErrUnknownZone = errors.New("未知区域")

// ParseZone 解析区域代码（忽略大小写与首尾空白）
func ParseZone(s string) (Zone, error) {
	key := NormalizeName(s)
	for _, z := range AllZones {
		if NormalizeName(string(z)) == key {
			return z, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownZone, s)
}

// Group 返回区域所属分组
func (z Zone) Group() ZoneGroup {
	switch z {
	case ZoneTSPS:
		return GroupTSPS
	case ZonePlant:
		return GroupPlant
	default:
		return GroupStandard
	}
}

// IsPlant 处理厂区域按进水/出水量统计，其余区域按抽排量统计
func (z Zone) IsPlant() bool { return z == ZonePlant }

// NormalizeName 名称比较键：去首尾空白、折叠内部空白、转小写
func NormalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
