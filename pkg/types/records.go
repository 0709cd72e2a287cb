package types

import "slices"

// ============================================================================
//                              实体记录
// ============================================================================

// Domain 域：独立运行的音频子系统
type Domain struct {
	ID      DomainID    `json:"id"`
	Name    string      `json:"name"`
	BusName string      `json:"bus_name"`
	State   DomainState `json:"state"`
}

// Volume 音量值
type Volume int16

// SoundPropertyType 声音属性类型
type SoundPropertyType uint16

// SoundProperty 声音属性
type SoundProperty struct {
	Type  SoundPropertyType `json:"type"`
	Value int16             `json:"value"`
}

// Source 音源
type Source struct {
	ID              SourceID           `json:"id"`
	DomainID        DomainID           `json:"domain_id"`
	Name            string             `json:"name"`
	ClassID         uint16             `json:"class_id"`
	State           SourceState        `json:"state"`
	Volume          Volume             `json:"volume"`
	Availability    Availability       `json:"availability"`
	Formats         []ConnectionFormat `json:"formats"`
	SoundProperties []SoundProperty    `json:"sound_properties,omitempty"`
}

// Clone 深拷贝
func (s Source) Clone() Source {
	s.Formats = slices.Clone(s.Formats)
	s.SoundProperties = slices.Clone(s.SoundProperties)
	return s
}

// Sink 音宿
type Sink struct {
	ID              SinkID             `json:"id"`
	DomainID        DomainID           `json:"domain_id"`
	Name            string             `json:"name"`
	ClassID         uint16             `json:"class_id"`
	Volume          Volume             `json:"volume"`
	Availability    Availability       `json:"availability"`
	Formats         []ConnectionFormat `json:"formats"`
	SoundProperties []SoundProperty    `json:"sound_properties,omitempty"`
}

// Clone 深拷贝
func (s Sink) Clone() Sink {
	s.Formats = slices.Clone(s.Formats)
	s.SoundProperties = slices.Clone(s.SoundProperties)
	return s
}

// Conversion 网关与转换器的共同形状
//
// SinkID 是音频进入的一端，SourceID 是音频离开的一端。
// SinkFormats 对应进入端，SourceFormats 对应离开端。
// Matrix 按音宿优先排列：Matrix[sinkIdx*len(SourceFormats)+srcIdx]。
type Conversion struct {
	SinkID        SinkID             `json:"sink_id"`
	SourceID      SourceID           `json:"source_id"`
	SourceFormats []ConnectionFormat `json:"source_formats"`
	SinkFormats   []ConnectionFormat `json:"sink_formats"`
	Matrix        []bool             `json:"matrix"`
}

// MatrixValid 矩阵尺寸是否与格式列表一致
func (c Conversion) MatrixValid() bool {
	return len(c.Matrix) == len(c.SourceFormats)*len(c.SinkFormats)
}

func (c Conversion) clone() Conversion {
	c.SourceFormats = slices.Clone(c.SourceFormats)
	c.SinkFormats = slices.Clone(c.SinkFormats)
	c.Matrix = slices.Clone(c.Matrix)
	return c
}

// Gateway 跨域跳
type Gateway struct {
	ID              GatewayID `json:"id"`
	Name            string    `json:"name"`
	SinkDomainID    DomainID  `json:"sink_domain_id"`
	SourceDomainID  DomainID  `json:"source_domain_id"`
	ControlDomainID DomainID  `json:"control_domain_id"`
	Conversion
}

// Clone 深拷贝
func (g Gateway) Clone() Gateway {
	g.Conversion = g.Conversion.clone()
	return g
}

// Converter 域内格式转换跳
type Converter struct {
	ID       ConverterID `json:"id"`
	Name     string      `json:"name"`
	DomainID DomainID    `json:"domain_id"`
	Conversion
}

// Clone 深拷贝
func (c Converter) Clone() Converter {
	c.Conversion = c.Conversion.clone()
	return c
}

// Connection 连接记录
type Connection struct {
	ID       ConnectionID     `json:"id"`
	SourceID SourceID         `json:"source_id"`
	SinkID   SinkID           `json:"sink_id"`
	Format   ConnectionFormat `json:"format"`
	State    ConnectionState  `json:"state"`
}
