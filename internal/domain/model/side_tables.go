package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Side table names as they appear in the artifact.
const (
	FilesTable = "files"
	MetaTable  = "meta"
	TempsTable = "temps"
)

// HeaderRecord is the optional first line of a source file.
type HeaderRecord struct {
	Inicio      string
	DuracionMin int64
}

// FileEntry maps file_<id> to the path exactly as it was discovered.
type FileEntry struct {
	Key  string `json:"key" gorm:"column:key;primaryKey"`
	Path string `json:"path" gorm:"column:path"`
}

func (FileEntry) TableName() string { return FilesTable }

// MetaEntry is either a string (Inicio_<id>) or an integer (Duracion_min_<id>) value.
type MetaEntry struct {
	Key      string  `json:"key" gorm:"column:key;primaryKey"`
	StrValue *string `json:"str,omitempty" gorm:"column:str_value"`
	IntValue *int64  `json:"int,omitempty" gorm:"column:int_value"`
}

func (MetaEntry) TableName() string { return MetaTable }

// FileKey returns "file_<id>".
func FileKey(id int32) string { return fmt.Sprintf("file_%d", id) }

// InicioKey returns "Inicio_<id>".
func InicioKey(id int32) string { return fmt.Sprintf("Inicio_%d", id) }

// DuracionKey returns "Duracion_min_<id>".
func DuracionKey(id int32) string { return fmt.Sprintf("Duracion_min_%d", id) }

// SideTables accumulates the files and meta registries of one artifact.
type SideTables struct {
	Files []FileEntry `json:"files"`
	Meta  []MetaEntry `json:"meta"`
}

// AddFile registers a discovered source file.
func (s *SideTables) AddFile(id int32, path string) {
	s.Files = append(s.Files, FileEntry{Key: FileKey(id), Path: path})
}

// AddHeader records both header fields for file id.
func (s *SideTables) AddHeader(id int32, h HeaderRecord) {
	inicio := h.Inicio
	dur := h.DuracionMin
	s.Meta = append(s.Meta,
		MetaEntry{Key: InicioKey(id), StrValue: &inicio},
		MetaEntry{Key: DuracionKey(id), IntValue: &dur},
	)
}

// FilePath looks up the path registered for id.
func (s *SideTables) FilePath(id int32) (string, bool) {
	key := FileKey(id)
	for _, f := range s.Files {
		if f.Key == key {
			return f.Path, true
		}
	}
	return "", false
}

// Header returns the header recorded for id, if both of its entries are present.
func (s *SideTables) Header(id int32) (HeaderRecord, bool) {
	var (
		h              HeaderRecord
		hasIni, hasDur bool
		iniKey, durKey = InicioKey(id), DuracionKey(id)
	)
	for _, m := range s.Meta {
		switch {
		case m.Key == iniKey && m.StrValue != nil:
			h.Inicio, hasIni = *m.StrValue, true
		case m.Key == durKey && m.IntValue != nil:
			h.DuracionMin, hasDur = *m.IntValue, true
		}
	}
	return h, hasIni && hasDur
}

// FileIDs returns the ids parsed from the files registry, sorted.
func (s *SideTables) FileIDs() []int32 {
	ids := make([]int32, 0, len(s.Files))
	for _, f := range s.Files {
		n, err := strconv.ParseInt(strings.TrimPrefix(f.Key, "file_"), 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, int32(n))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
