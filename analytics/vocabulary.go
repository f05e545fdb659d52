package analytics

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Tag 情绪标签
type Tag string

const (
	Happy       Tag = "happy"
	Love        Tag = "love"
	Excited     Tag = "excited"
	Proud       Tag = "proud"
	Calm        Tag = "calm"
	Bored       Tag = "bored"
	Tired       Tag = "tired"
	Sad         Tag = "sad"
	Anxious     Tag = "anxious"
	Fear        Tag = "fear"
	Confused    Tag = "confused"
	Angry       Tag = "angry"
	Shame       Tag = "shame"
	Guilt       Tag = "guilt"
	Hurt        Tag = "hurt"
	Sick        Tag = "sick"
	Fuzzy       Tag = "fuzzy"
	Numb        Tag = "numb"
	Overwhelmed Tag = "overwhelmed"
	Hopeful     Tag = "hopeful"
)

// VocabularyVersion 内置词表版本，新增标签时递增
const VocabularyVersion = 2

var defaultTags = []Tag{
	Happy, Love, Excited, Proud, Calm, Bored, Tired, Sad, Anxious, Fear,
	Confused, Angry, Shame, Guilt, Hurt, Sick, Fuzzy, Numb, Overwhelmed, Hopeful,
}

// fuzzy / numb / overwhelmed / hopeful 不在表中，按中性值计算
var defaultValence = map[Tag]int{
	Happy:    5,
	Excited:  5,
	Proud:    5,
	Love:     5,
	Calm:     4,
	Confused: 2,
	Tired:    2,
	Bored:    2,
	Anxious:  1,
	Sad:      1,
	Angry:    1,
	Fear:     1,
	Shame:    1,
	Guilt:    1,
	Sick:     1,
	Hurt:     1,
}

// Vocabulary 情绪词表及效价表（1-5，越大越积极）
type Vocabulary struct {
	version int
	tags    []Tag
	index   map[Tag]struct{}
	valence map[Tag]int
}

// DefaultVocabulary 返回内置的二十个标签词表
func DefaultVocabulary() *Vocabulary {
	return newVocabulary(VocabularyVersion, defaultTags, defaultValence)
}

func newVocabulary(version int, tags []Tag, valence map[Tag]int) *Vocabulary {
	v := &Vocabulary{
		version: version,
		tags:    make([]Tag, 0, len(tags)),
		index:   make(map[Tag]struct{}, len(tags)),
		valence: make(map[Tag]int, len(valence)),
	}
	for _, t := range tags {
		if _, ok := v.index[t]; ok {
			continue
		}
		v.index[t] = struct{}{}
		v.tags = append(v.tags, t)
	}
	for t, score := range valence {
		v.valence[t] = score
	}
	return v
}

// Version 词表版本
func (v *Vocabulary) Version() int { return v.version }

// Tags 返回词表中的全部标签（有序副本）
func (v *Vocabulary) Tags() []Tag {
	out := make([]Tag, len(v.tags))
	copy(out, v.tags)
	return out
}

// Contains 判断标签是否属于词表
func (v *Vocabulary) Contains(t Tag) bool {
	_, ok := v.index[t]
	return ok
}

// Valence 返回标签效价，未知标签为中性值 3
func (v *Vocabulary) Valence(t Tag) int {
	if score, ok := v.valence[t]; ok {
		return score
	}
	return DefaultNeutralValence
}

type vocabularyFile struct {
	Version int            `yaml:"version"`
	Tags    []string       `yaml:"tags"`
	Valence map[string]int `yaml:"valence"`
}

// LoadVocabulary 从 YAML 读取词表，叠加在内置词表之上
//
//	version: 3
//	tags: [grateful]
//	valence:
//	  grateful: 5
func LoadVocabulary(r io.Reader) (*Vocabulary, error) {
	var file vocabularyFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode vocabulary: %w", err)
	}

	tags := append([]Tag{}, defaultTags...)
	for _, name := range file.Tags {
		if name == "" {
			return nil, fmt.Errorf("vocabulary contains an empty tag")
		}
		tags = append(tags, Tag(name))
	}

	valence := make(map[Tag]int, len(defaultValence)+len(file.Valence))
	for t, score := range defaultValence {
		valence[t] = score
	}
	for name, score := range file.Valence {
		if score < MinValence || score > MaxValence {
			return nil, fmt.Errorf("valence for %q must be within 1..5, got %d", name, score)
		}
		valence[Tag(name)] = score
	}

	version := file.Version
	if version == 0 {
		version = VocabularyVersion
	}
	return newVocabulary(version, tags, valence), nil
}
