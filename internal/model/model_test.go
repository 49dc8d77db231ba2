package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseZone(t *testing.T) {
	tests := []struct {
		in   string
		want Zone
		err  bool
	}{
		{"WZ", ZoneWZ, false},
		{" swz ", ZoneSWZ, false},
		{"plant", ZonePlant, false},
		{"tsps", ZoneTSPS, false},
		{"XZ", "", true},
	}
	for _, tt := range tests {
		got, err := ParseZone(tt.in)
		if tt.err {
			if !errors.Is(err, ErrUnknownZone) {
				t.Errorf("%q: 期望 ErrUnknownZone，实际: %v", tt.in, err)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("%q: 期望 %s，实际: %s", tt.in, tt.want, got)
		}
	}
}

func TestZoneGroup(t *testing.T) {
	if ZoneWZ.Group() != GroupStandard || ZoneTSPS.Group() != GroupTSPS || ZonePlant.Group() != GroupPlant {
		t.Error("区域分组不正确")
	}
}

func TestDefaultCatalog_StationsBelongToExactlyOneZone(t *testing.T) {
	c := DefaultCatalog()
	seen := make(map[string]Zone)
	for _, z := range c.Zones() {
		for _, s := range c.Stations(z) {
			if prev, ok := seen[NormalizeName(s)]; ok {
				t.Errorf("泵站 %q 同时属于 %s 与 %s", s, prev, z)
			}
			seen[NormalizeName(s)] = z
		}
	}
	if len(c.Zones()) != len(AllZones) {
		t.Errorf("期望 %d 个区域，实际: %d", len(AllZones), len(c.Zones()))
	}
	if got := c.Stations(ZoneSR); len(got) != 1 || got[0] != "W-5" {
		t.Errorf("SR 期望 [W-5]，实际: %v", got)
	}
}

func TestCatalog_Resolve(t *testing.T) {
	c := DefaultCatalog()

	name, err := c.Resolve(ZoneWZ, "  paldi   shantivan ")
	if err != nil {
		t.Fatalf("Resolve 失败: %v", err)
	}
	if name != "Paldi Shantivan" {
		t.Errorf("期望规范名 Paldi Shantivan，实际: %q", name)
	}

	if _, err := c.Resolve(ZoneEZ, "Ranip"); !errors.Is(err, ErrUnknownStation) {
		t.Errorf("跨区域泵站应被拒绝，实际: %v", err)
	}
	if _, err := c.Resolve(ZoneWZ, "Nowhere"); !errors.Is(err, ErrUnknownStation) {
		t.Errorf("未知泵站应被拒绝，实际: %v", err)
	}
}

func TestNewCatalog_RejectsDuplicateStation(t *testing.T) {
	_, err := NewCatalog(map[Zone][]string{
		ZoneWZ: {"Alpha"},
		ZoneEZ: {"alpha "},
	})
	if err == nil {
		t.Error("同一泵站出现在两个区域时应报错")
	}
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2024-02-28")
	if err != nil {
		t.Fatalf("ParseDate 失败: %v", err)
	}
	if got := d.AddDays(2).String(); got != "2024-03-01" {
		t.Errorf("期望 2024-03-01，实际: %s", got)
	}
	if !d.Before(d.AddDays(1)) || d.After(d) {
		t.Error("日期比较不正确")
	}

	var scanned Date
	if err := scanned.Scan(time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)); err != nil || scanned != d {
		t.Errorf("Scan(time.Time) 期望 %s，实际: %s (%v)", d, scanned, err)
	}
	if err := scanned.Scan([]byte("2024-02-28")); err != nil || scanned != d {
		t.Errorf("Scan([]byte) 期望 %s，实际: %s (%v)", d, scanned, err)
	}

	b, _ := json.Marshal(d)
	if string(b) != `"2024-02-28"` {
		t.Errorf("JSON 期望 \"2024-02-28\"，实际: %s", b)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil || back != d {
		t.Errorf("JSON 反序列化不一致: %s (%v)", back, err)
	}
	if _, err := ParseDate("2024-13-01"); err == nil {
		t.Error("非法日期应报错")
	}
}

func TestStationRecord_VolumeAndCritical(t *testing.T) {
	sps := &StationRecord{Zone: ZoneWZ, PumpingVolume: 10, IncomeVolume: 99, StandbyPumps: 0}
	if sps.Volume() != 10 {
		t.Errorf("泵站主量应为抽排量，实际: %v", sps.Volume())
	}
	if !sps.Critical() {
		t.Error("备用泵为 0 应判为紧急")
	}

	plant := &StationRecord{Zone: ZonePlant, PumpingVolume: 99, IncomeVolume: 7, StandbyPumps: 1}
	if plant.Volume() != 7 {
		t.Errorf("处理厂主量应为进水量，实际: %v", plant.Volume())
	}
	if plant.Critical() {
		t.Error("有备用泵不应判为紧急")
	}
}

func TestRecordKeyString(t *testing.T) {
	k := RecordKey{Date: Date{Year: 2024, Month: 5, Day: 1}, Station: "Ranip"}
	if k.String() != "2024-05-01|Ranip" {
		t.Errorf("期望 2024-05-01|Ranip，实际: %s", k.String())
	}
}

func TestParseAccessClass(t *testing.T) {
	cases := map[string]AccessClass{
		"entry": AccessEntry, "Log Entry": AccessEntry,
		"analysis report": AccessReport, "BOTH": AccessBoth,
	}
	for in, want := range cases {
		got, err := ParseAccessClass(in)
		if err != nil || got != want {
			t.Errorf("%q: 期望 %s，实际: %s (%v)", in, want, got, err)
		}
	}
	if _, err := ParseAccessClass("admin"); err == nil {
		t.Error("未知类别应报错")
	}
	if AccessEntry.Elevated() || !AccessReport.Elevated() || !AccessBoth.Elevated() {
		t.Error("Elevated 判断不正确")
	}
}
