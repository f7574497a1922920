package scene

// Forward-shaded metallic-roughness approximation: one directional light
// plus a constant ambient term, with optional base color texturing and
// mask-mode alpha testing.

const meshVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec4 aColor;
layout (location = 3) in vec2 aTexCoord;

uniform mat4 uMVP;
uniform mat4 uModel;

out vec3 vNormal;
out vec4 vColor;
out vec2 vTexCoord;

void main() {
    gl_Position = uMVP * vec4(aPosition, 1.0);
    vNormal = mat3(uModel) * aNormal;
    vColor = aColor;
    vTexCoord = aTexCoord;
}
`

const meshFragmentShader = `#version 410 core
in vec3 vNormal;
in vec4 vColor;
in vec2 vTexCoord;

uniform vec3 uLightDir;
uniform vec3 uAmbient;
uniform vec4 uBaseColor;
uniform float uMetallic;
uniform float uRoughness;
uniform vec3 uEmissive;
uniform int uAlphaMode;   // 0 opaque, 1 mask, 2 blend
uniform float uAlphaCutoff;
uniform int uUseTexture;
uniform sampler2D uTexture;

out vec4 fragColor;

void main() {
    vec4 base = uBaseColor * vColor;
    if (uUseTexture == 1) {
        base *= texture(uTexture, vTexCoord);
    }
    if (uAlphaMode == 1 && base.a < uAlphaCutoff) {
        discard;
    }

    vec3 n = normalize(vNormal);
    float ndl = max(dot(n, -normalize(uLightDir)), 0.0);
    float shade = mix(ndl, ndl * 0.5 + 0.5, uRoughness * 0.5);
    vec3 diffuse = base.rgb * (1.0 - uMetallic * 0.5);
    vec3 color = diffuse * (uAmbient + vec3(shade)) + uEmissive;

    float alpha = uAlphaMode == 2 ? base.a : 1.0;
    fragColor = vec4(color, alpha);
}
`
