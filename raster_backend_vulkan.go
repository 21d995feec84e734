//go:build vulkan

// raster_backend_vulkan.go - optional accelerated presentation path for a
// *Framebuffer, adapted from voodoo_vulkan.go's instance/device/offscreen-
// image/staging-buffer/readback plumbing. Trimmed hard relative to that
// file: this kernel never rasterizes triangles, so the pipeline, vertex
// buffer, and render pass machinery voodoo_vulkan.go builds for 3D have no
// home here. What survives is the presentation half only: upload the
// software rasterizer's framebuffer into a device-local image, then read
// it back through a host-visible staging buffer, mirroring
// readbackFramebuffer's copy direction but for upload rather than capture.

package main

import (
	"fmt"
	"sync"
	"unsafe"

	vk "github.com/goki/vulkan"
)

func init() {
	compiledFeatures = append(compiledFeatures, "raster:vulkan")
}

// VulkanPresenter uploads a *Framebuffer into a device-local image each
// present and reads it back through a host-visible staging buffer, per
// spec.md §4.10.5's rasterizer-to-host handoff. It is compiled only under
// the vulkan build tag; nothing in the package constructs one, and
// HostDisplay always presents the framebuffer itself.
type VulkanPresenter struct {
	mu sync.Mutex

	instance       vk.Instance
	physicalDevice vk.PhysicalDevice
	device         vk.Device
	queue          vk.Queue
	queueFamily    uint32

	commandPool   vk.CommandPool
	commandBuffer vk.CommandBuffer
	fence         vk.Fence

	width, height int
	image         vk.Image
	imageMemory   vk.DeviceMemory

	stagingBuffer       vk.Buffer
	stagingBufferMemory vk.DeviceMemory

	initialized bool
}

// NewVulkanPresenter allocates a presenter; call Init before use.
func NewVulkanPresenter() *VulkanPresenter {
	return &VulkanPresenter{}
}

// Init brings up the Vulkan instance, device, offscreen image, and staging
// buffer sized for width x height RGBA8888 frames. A failure here leaves
// the presenter unusable.
func (vp *VulkanPresenter) Init(width, height int) error {
	vp.mu.Lock()
	defer vp.mu.Unlock()

	vp.width, vp.height = width, height

	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return fmt.Errorf("vulkan: load library: %w", err)
	}
	if err := vk.Init(); err != nil {
		return fmt.Errorf("vulkan: init loader: %w", err)
	}

	if err := vp.createInstance(); err != nil {
		return fmt.Errorf("vulkan: create instance: %w", err)
	}
	if err := vp.selectPhysicalDevice(); err != nil {
		vp.destroyInstance()
		return fmt.Errorf("vulkan: select device: %w", err)
	}
	if err := vp.createDevice(); err != nil {
		vp.destroyInstance()
		return fmt.Errorf("vulkan: create device: %w", err)
	}
	if err := vp.createCommandPool(); err != nil {
		vp.destroyDevice()
		vp.destroyInstance()
		return fmt.Errorf("vulkan: create command pool: %w", err)
	}
	if err := vp.createOffscreenImage(); err != nil {
		vp.destroyCommandPool()
		vp.destroyDevice()
		vp.destroyInstance()
		return fmt.Errorf("vulkan: create offscreen image: %w", err)
	}
	if err := vp.createStagingBuffer(); err != nil {
		vp.destroyOffscreenImage()
		vp.destroyCommandPool()
		vp.destroyDevice()
		vp.destroyInstance()
		return fmt.Errorf("vulkan: create staging buffer: %w", err)
	}
	if err := vp.createCommandBuffer(); err != nil {
		vp.destroyStagingBuffer()
		vp.destroyOffscreenImage()
		vp.destroyCommandPool()
		vp.destroyDevice()
		vp.destroyInstance()
		return fmt.Errorf("vulkan: create command buffer: %w", err)
	}
	if err := vp.createFence(); err != nil {
		vp.destroyStagingBuffer()
		vp.destroyOffscreenImage()
		vp.destroyCommandPool()
		vp.destroyDevice()
		vp.destroyInstance()
		return fmt.Errorf("vulkan: create fence: %w", err)
	}

	vp.initialized = true
	return nil
}

func (vp *VulkanPresenter) createInstance() error {
	appInfo := vk.ApplicationInfo{
		SType:         vk.StructureTypeApplicationInfo,
		PEngineName:   safeString("window manager raster backend"),
		EngineVersion: vk.MakeVersion(1, 0, 0),
		ApiVersion:    vk.MakeVersion(1, 1, 0),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &appInfo,
	}
	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return fmt.Errorf("vkCreateInstance failed: %d", res)
	}
	vp.instance = instance
	vk.InitInstance(instance)
	return nil
}

func (vp *VulkanPresenter) selectPhysicalDevice() error {
	var count uint32
	vk.EnumeratePhysicalDevices(vp.instance, &count, nil)
	if count == 0 {
		return fmt.Errorf("no Vulkan-capable GPUs found")
	}
	devices := make([]vk.PhysicalDevice, count)
	vk.EnumeratePhysicalDevices(vp.instance, &count, devices)

	for _, device := range devices {
		var qfCount uint32
		vk.GetPhysicalDeviceQueueFamilyProperties(device, &qfCount, nil)
		families := make([]vk.QueueFamilyProperties, qfCount)
		vk.GetPhysicalDeviceQueueFamilyProperties(device, &qfCount, families)
		for i, qf := range families {
			qf.Deref()
			if qf.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
				vp.physicalDevice = device
				vp.queueFamily = uint32(i)
				return nil
			}
		}
	}
	return fmt.Errorf("no GPU with a graphics queue found")
}

func (vp *VulkanPresenter) createDevice() error {
	priority := float32(1.0)
	queueInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: vp.queueFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{priority},
	}
	deviceInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos:    []vk.DeviceQueueCreateInfo{queueInfo},
	}
	var device vk.Device
	if res := vk.CreateDevice(vp.physicalDevice, &deviceInfo, nil, &device); res != vk.Success {
		return fmt.Errorf("vkCreateDevice failed: %d", res)
	}
	vp.device = device
	var queue vk.Queue
	vk.GetDeviceQueue(device, vp.queueFamily, 0, &queue)
	vp.queue = queue
	return nil
}

func (vp *VulkanPresenter) createCommandPool() error {
	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: vp.queueFamily,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(vp.device, &poolInfo, nil, &pool); res != vk.Success {
		return fmt.Errorf("vkCreateCommandPool failed: %d", res)
	}
	vp.commandPool = pool
	return nil
}

func (vp *VulkanPresenter) createOffscreenImage() error {
	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    vk.FormatR8g8b8a8Unorm,
		Extent:    vk.Extent3D{Width: uint32(vp.width), Height: uint32(vp.height), Depth: 1},
		MipLevels:   1,
		ArrayLayers: 1,
		Samples:     vk.SampleCount1Bit,
		Tiling:      vk.ImageTilingOptimal,
		Usage:       vk.ImageUsageFlags(vk.ImageUsageTransferDstBit | vk.ImageUsageTransferSrcBit),
	}
	var image vk.Image
	if res := vk.CreateImage(vp.device, &imageInfo, nil, &image); res != vk.Success {
		return fmt.Errorf("vkCreateImage failed: %d", res)
	}
	vp.image = image

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(vp.device, image, &memReqs)
	memReqs.Deref()
	memType, err := vp.findMemoryType(memReqs.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return err
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}
	var mem vk.DeviceMemory
	if res := vk.AllocateMemory(vp.device, &allocInfo, nil, &mem); res != vk.Success {
		return fmt.Errorf("vkAllocateMemory (image) failed: %d", res)
	}
	vp.imageMemory = mem
	vk.BindImageMemory(vp.device, image, mem, 0)
	return nil
}

func (vp *VulkanPresenter) createStagingBuffer() error {
	size := vk.DeviceSize(vp.width * vp.height * 4)
	bufInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit | vk.BufferUsageTransferDstBit),
		SharingMode: vk.SharingModeExclusive,
	}
	var buf vk.Buffer
	if res := vk.CreateBuffer(vp.device, &bufInfo, nil, &buf); res != vk.Success {
		return fmt.Errorf("vkCreateBuffer (staging) failed: %d", res)
	}
	vp.stagingBuffer = buf

	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(vp.device, buf, &memReqs)
	memReqs.Deref()
	memType, err := vp.findMemoryType(memReqs.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return err
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}
	var mem vk.DeviceMemory
	if res := vk.AllocateMemory(vp.device, &allocInfo, nil, &mem); res != vk.Success {
		return fmt.Errorf("vkAllocateMemory (staging) failed: %d", res)
	}
	vp.stagingBufferMemory = mem
	vk.BindBufferMemory(vp.device, buf, mem, 0)
	return nil
}

func (vp *VulkanPresenter) createCommandBuffer() error {
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        vp.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	buffers := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(vp.device, &allocInfo, buffers); res != vk.Success {
		return fmt.Errorf("vkAllocateCommandBuffers failed: %d", res)
	}
	vp.commandBuffer = buffers[0]
	return nil
}

func (vp *VulkanPresenter) createFence() error {
	fenceInfo := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	var fence vk.Fence
	if res := vk.CreateFence(vp.device, &fenceInfo, nil, &fence); res != vk.Success {
		return fmt.Errorf("vkCreateFence failed: %d", res)
	}
	vp.fence = fence
	return nil
}

func (vp *VulkanPresenter) findMemoryType(typeFilter uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vp.physicalDevice, &props)
	props.Deref()
	for i := uint32(0); i < props.MemoryTypeCount; i++ {
		props.MemoryTypes[i].Deref()
		if typeFilter&(1<<i) != 0 && props.MemoryTypes[i].PropertyFlags&properties == properties {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no suitable memory type")
}

// Present uploads fb's bytes into the staging buffer, copies them into the
// offscreen image, then immediately reads the image back out through the
// same staging buffer — round-tripping through the device to prove the
// upload path rather than presenting to a swapchain, and returns the
// resulting bytes to the caller.
func (vp *VulkanPresenter) Present(fb *Framebuffer) ([]byte, error) {
	vp.mu.Lock()
	defer vp.mu.Unlock()
	if !vp.initialized {
		return nil, fmt.Errorf("vulkan presenter not initialized")
	}

	var data unsafe.Pointer
	size := vk.DeviceSize(len(fb.Pix))
	vk.MapMemory(vp.device, vp.stagingBufferMemory, 0, size, 0, &data)
	copy((*[1 << 30]byte)(data)[:len(fb.Pix)], fb.Pix)
	vk.UnmapMemory(vp.device, vp.stagingBufferMemory)

	vk.ResetFences(vp.device, 1, []vk.Fence{vp.fence})
	vk.ResetCommandBuffer(vp.commandBuffer, 0)

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	vk.BeginCommandBuffer(vp.commandBuffer, &beginInfo)

	region := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:  vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount:  1,
		},
		ImageExtent: vk.Extent3D{Width: uint32(vp.width), Height: uint32(vp.height), Depth: 1},
	}
	vk.CmdCopyBufferToImage(vp.commandBuffer, vp.stagingBuffer, vp.image, vk.ImageLayoutGeneral, 1, []vk.BufferImageCopy{region})
	vk.CmdCopyImageToBuffer(vp.commandBuffer, vp.image, vk.ImageLayoutGeneral, vp.stagingBuffer, 1, []vk.BufferImageCopy{region})

	vk.EndCommandBuffer(vp.commandBuffer)

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{vp.commandBuffer},
	}
	vk.QueueSubmit(vp.queue, 1, []vk.SubmitInfo{submitInfo}, vp.fence)
	vk.WaitForFences(vp.device, 1, []vk.Fence{vp.fence}, vk.True, ^uint64(0))

	out := make([]byte, len(fb.Pix))
	vk.MapMemory(vp.device, vp.stagingBufferMemory, 0, size, 0, &data)
	copy(out, (*[1 << 30]byte)(data)[:len(out)])
	vk.UnmapMemory(vp.device, vp.stagingBufferMemory)
	return out, nil
}

// Destroy tears down every Vulkan object the presenter owns.
func (vp *VulkanPresenter) Destroy() {
	vp.mu.Lock()
	defer vp.mu.Unlock()
	if !vp.initialized {
		return
	}
	vk.DeviceWaitIdle(vp.device)
	vp.destroyFence()
	vp.destroyStagingBuffer()
	vp.destroyOffscreenImage()
	vp.destroyCommandPool()
	vp.destroyDevice()
	vp.destroyInstance()
	vp.initialized = false
}

func (vp *VulkanPresenter) destroyFence() {
	if vp.fence != vk.NullFence {
		vk.DestroyFence(vp.device, vp.fence, nil)
	}
}

func (vp *VulkanPresenter) destroyStagingBuffer() {
	if vp.stagingBuffer != vk.NullBuffer {
		vk.DestroyBuffer(vp.device, vp.stagingBuffer, nil)
	}
	if vp.stagingBufferMemory != vk.NullDeviceMemory {
		vk.FreeMemory(vp.device, vp.stagingBufferMemory, nil)
	}
}

func (vp *VulkanPresenter) destroyOffscreenImage() {
	if vp.image != vk.NullImage {
		vk.DestroyImage(vp.device, vp.image, nil)
	}
	if vp.imageMemory != vk.NullDeviceMemory {
		vk.FreeMemory(vp.device, vp.imageMemory, nil)
	}
}

func (vp *VulkanPresenter) destroyCommandPool() {
	if vp.commandPool != vk.NullCommandPool {
		vk.DestroyCommandPool(vp.device, vp.commandPool, nil)
	}
}

func (vp *VulkanPresenter) destroyDevice() {
	if vp.device != nil {
		vk.DestroyDevice(vp.device, nil)
	}
}

func (vp *VulkanPresenter) destroyInstance() {
	if vp.instance != nil {
		vk.DestroyInstance(vp.instance, nil)
	}
}

func safeString(s string) string {
	return s + "\x00"
}
