// Package export writes the skinned mesh, its joint hierarchy and a sampled
// animation to a binary glTF file.
//
// Joints use translation-only bind frames: the bind transform of a joint is
// T(head), so its inverse bind matrix is T(-head) and the joint matrix at any
// frame equals the composed skin matrix of the bone.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"heatskin-renderer/internal/animation"
	"heatskin-renderer/internal/mathutil"
	"heatskin-renderer/internal/pose"
	"heatskin-renderer/internal/skeleton"
	"heatskin-renderer/internal/skinning"
)

// Model is the geometry exported alongside the skeleton.
type Model struct {
	Name      string
	Skeleton  *skeleton.Skeleton
	Vertices  []skinning.Vertex
	UVs       [][2]float64 // optional, one per vertex
	Indices   []uint32
	Texture   image.Image // optional base color texture
	BaseColor [4]float32
}

// Clip samples an animator at a fixed rate.
type Clip struct {
	Name     string
	Animator animation.Animator
	FPS      float64
	Frames   int
}

var ErrNoGeometry = errors.New("export: model has no triangles")

type builder struct {
	doc    *gltf.Document
	sk     *skeleton.Skeleton
	joints []uint32 // bone index -> node index
}

// Build assembles a glTF document. clip may be nil for a static export.
// Sampling a clip composes each frame level by level and stops when ctx is
// cancelled.
func Build(ctx context.Context, m Model, clip *Clip) (*gltf.Document, error) {
	if m.Skeleton == nil || m.Skeleton.Len() == 0 {
		return nil, skeleton.ErrEmptySkeleton
	}
	if len(m.Indices) < 3 || len(m.Vertices) == 0 {
		return nil, ErrNoGeometry
	}
	b := &builder{doc: gltf.NewDocument(), sk: m.Skeleton}
	b.addJoints()
	if err := b.addMesh(m); err != nil {
		return nil, err
	}
	if clip != nil && clip.Frames > 0 {
		if err := b.addClip(ctx, clip); err != nil {
			return nil, err
		}
	}
	return b.doc, nil
}

// WriteGLB builds the document and saves it as a .glb file.
func WriteGLB(ctx context.Context, path string, m Model, clip *Clip) error {
	doc, err := Build(ctx, m, clip)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

func (b *builder) addJoints() {
	bones := b.sk.Bones
	b.joints = make([]uint32, len(bones))
	for i := range bones {
		b.joints[i] = uint32(len(b.doc.Nodes))
		b.doc.Nodes = append(b.doc.Nodes, &gltf.Node{
			Name:     bones[i].Name,
			Rotation: [4]float32{0, 0, 0, 1},
			Scale:    [3]float32{1, 1, 1},
		})
	}
	for _, i := range b.sk.Order() {
		bone := &bones[i]
		node := b.doc.Nodes[b.joints[i]]
		local := bone.Head
		if bone.IsRoot() {
			b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, b.joints[i])
		} else {
			local = local.Sub(bones[bone.Parent].Head)
			parent := b.doc.Nodes[b.joints[bone.Parent]]
			parent.Children = append(parent.Children, b.joints[i])
		}
		node.Translation = vec3f(local)
	}
}

func (b *builder) addMesh(m Model) error {
	n := len(m.Vertices)
	positions := make([][3]float32, n)
	normals := make([][3]float32, n)
	joints := make([][4]uint16, n)
	weights := make([][4]float32, n)
	for i := range m.Vertices {
		v := &m.Vertices[i]
		positions[i] = vec3f(v.Position)
		normals[i] = vec3f(v.Normal)
		for k, in := range v.Influences {
			if in.Bone < 0 || in.Bone >= b.sk.Len() {
				return fmt.Errorf("export: vertex %d references bone %d", i, in.Bone)
			}
			joints[i][k] = uint16(in.Bone)
			weights[i][k] = float32(in.Weight)
		}
	}

	attributes := map[string]uint32{
		"POSITION":  modeler.WritePosition(b.doc, positions),
		"NORMAL":    modeler.WriteNormal(b.doc, normals),
		"JOINTS_0":  modeler.WriteJoints(b.doc, joints),
		"WEIGHTS_0": modeler.WriteWeights(b.doc, weights),
	}
	if len(m.UVs) == n {
		uvs := make([][2]float32, n)
		for i, uv := range m.UVs {
			uvs[i] = [2]float32{float32(uv[0]), float32(uv[1])}
		}
		attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(b.doc, uvs)
	}

	material, err := b.addMaterial(m)
	if err != nil {
		return err
	}

	b.doc.Meshes = append(b.doc.Meshes, &gltf.Mesh{
		Name: m.Name,
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(modeler.WriteIndices(b.doc, m.Indices)),
			Attributes: attributes,
			Material:   gltf.Index(material),
		}},
	})

	ibm := make([][4][4]float32, len(b.sk.Bones))
	for i := range b.sk.Bones {
		ibm[i] = mat4f(mathutil.Translate(b.sk.Bones[i].Head.Mul(-1)))
	}
	b.doc.Skins = append(b.doc.Skins, &gltf.Skin{
		Name:                m.Name,
		Joints:              b.joints,
		InverseBindMatrices: gltf.Index(b.addMatrices(ibm)),
	})

	node := uint32(len(b.doc.Nodes))
	b.doc.Nodes = append(b.doc.Nodes, &gltf.Node{
		Name:     m.Name,
		Mesh:     gltf.Index(uint32(len(b.doc.Meshes) - 1)),
		Skin:     gltf.Index(uint32(len(b.doc.Skins) - 1)),
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
	})
	b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, node)
	return nil
}

func (b *builder) addMaterial(m Model) (uint32, error) {
	color := m.BaseColor
	if color == ([4]float32{}) {
		color = [4]float32{1, 1, 1, 1}
	}
	var roughness, metallic float32 = 0.8, 0
	mat := &gltf.Material{
		Name: m.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &color,
			RoughnessFactor: &roughness,
			MetallicFactor:  &metallic,
		},
		DoubleSided: true,
	}
	if m.Texture != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, m.Texture); err != nil {
			return 0, fmt.Errorf("export: encode texture: %w", err)
		}
		img, err := modeler.WriteImage(b.doc, m.Name+".png", "image/png", &buf)
		if err != nil {
			return 0, fmt.Errorf("export: embed texture: %w", err)
		}
		b.doc.Buffers[0].ByteLength = uint32(len(b.doc.Buffers[0].Data))
		b.doc.Samplers = []*gltf.Sampler{{}}
		b.doc.Textures = append(b.doc.Textures, &gltf.Texture{Sampler: gltf.Index(0), Source: gltf.Index(img)})
		mat.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: uint32(len(b.doc.Textures) - 1)}
	}
	b.doc.Materials = append(b.doc.Materials, mat)
	return uint32(len(b.doc.Materials) - 1), nil
}

// addMatrices stores column-major 4x4 matrices as a MAT4 accessor.
func (b *builder) addMatrices(mats [][4][4]float32) uint32 {
	cols := make([][4]float32, len(mats)*4)
	for i, m := range mats {
		copy(cols[i*4:i*4+4], m[:])
	}
	acc := modeler.WriteTangent(b.doc, cols)
	b.doc.Accessors[acc].Type = gltf.AccessorMat4
	b.doc.Accessors[acc].Count /= 4
	b.doc.BufferViews[*b.doc.Accessors[acc].BufferView].ByteStride *= 4
	return acc
}

// addClip samples the animator once per frame and writes per-joint rotation
// and translation channels with linear interpolation.
func (b *builder) addClip(ctx context.Context, clip *Clip) error {
	if clip.FPS <= 0 {
		return fmt.Errorf("export: invalid clip rate %g", clip.FPS)
	}
	sk := b.sk.Clone()
	bones := sk.Bones
	rotations := make([][][4]float32, len(bones))
	translations := make([][][3]float32, len(bones))
	keys := make([]float32, clip.Frames)
	locals := make([]mathutil.Mat4, len(bones))

	for f := 0; f < clip.Frames; f++ {
		t := animation.FrameTime(f, clip.FPS)
		keys[f] = float32(t)
		if err := clip.Animator.Apply(sk, t); err != nil {
			return fmt.Errorf("export: frame %d: %w", f, err)
		}
		skins, err := pose.ComposeWaves(ctx, sk)
		if err != nil {
			return fmt.Errorf("export: frame %d: %w", f, err)
		}
		jointLocals(sk, skins, locals)
		for i, local := range locals {
			rot, pos := mathutil.DecomposeRigid(local)
			rotations[i] = append(rotations[i], [4]float32{float32(rot[0]), float32(rot[1]), float32(rot[2]), float32(rot[3])})
			translations[i] = append(translations[i], vec3f(pos))
		}
	}

	a := &gltf.Animation{Name: clip.Name}
	input := modeler.WriteAccessor(b.doc, gltf.TargetArrayBuffer, keys)
	for i := range bones {
		b.addChannel(a, input, modeler.WriteTangent(b.doc, rotations[i]), b.joints[i], gltf.TRSRotation)
		b.addChannel(a, input, modeler.WritePosition(b.doc, translations[i]), b.joints[i], gltf.TRSTranslation)
	}
	b.doc.Animations = append(b.doc.Animations, a)
	return nil
}

// jointLocals converts skin matrices into parent-relative joint transforms.
// A joint's world transform is skin·T(head); dst receives
// inv(parentWorld)·world, or the world transform for a root.
func jointLocals(sk *skeleton.Skeleton, skins, dst []mathutil.Mat4) {
	world := make([]mathutil.Mat4, len(sk.Bones))
	for _, i := range sk.Order() {
		bone := &sk.Bones[i]
		world[i] = skins[i].Mul4(mathutil.Translate(bone.Head))
		dst[i] = world[i]
		if !bone.IsRoot() {
			dst[i] = world[bone.Parent].Inv().Mul4(world[i])
		}
	}
}

func (b *builder) addChannel(a *gltf.Animation, input, output, node uint32, path gltf.TRSProperty) {
	a.Samplers = append(a.Samplers, &gltf.AnimationSampler{
		Input:         gltf.Index(input),
		Output:        gltf.Index(output),
		Interpolation: gltf.InterpolationLinear,
	})
	a.Channels = append(a.Channels, &gltf.Channel{
		Sampler: gltf.Index(uint32(len(a.Samplers) - 1)),
		Target: gltf.ChannelTarget{
			Node: gltf.Index(node),
			Path: path,
		},
	})
}

func vec3f(v mathutil.Vec3) [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

func mat4f(m mathutil.Mat4) [4][4]float32 {
	var out [4][4]float32
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[c][r] = float32(m[c*4+r])
		}
	}
	return out
}
